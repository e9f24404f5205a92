package scalebloom

import (
	sberrors "github.com/tamirms/scalebloom/errors"
)

// InsertOutcome reports the result of a single Insert call.
type InsertOutcome uint8

const (
	// Accepted means the element was new and has been admitted.
	Accepted InsertOutcome = iota

	// AlreadyPresent means the element's bit pattern was already fully
	// set, so the call changed nothing and consumed no capacity.
	AlreadyPresent

	// RejectedAtCapacity means the filter is saturated and the element
	// was not admitted. State is unchanged. Only fixed-capacity filters
	// report this outcome.
	RejectedAtCapacity
)

func (o InsertOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case AlreadyPresent:
		return "already-present"
	case RejectedAtCapacity:
		return "rejected-at-capacity"
	default:
		return "unknown"
	}
}

// Filter is the contract shared by fixed-capacity and scalable filters.
//
// Filters are single-writer structures: Insert calls must be externally
// serialized, and must not run concurrently with MightContain. Concurrent
// MightContain calls are safe with each other.
type Filter[E any] interface {
	// Insert admits e into the filter. See InsertOutcome for the three
	// possible results. Inserting never produces false negatives: once an
	// Insert returns Accepted or AlreadyPresent, MightContain(e) is true
	// for the rest of the filter's lifetime.
	Insert(e E) InsertOutcome

	// MightContain reports whether e may have been inserted. False
	// positives occur with probability bounded by the filter's target
	// while within capacity; false negatives never occur.
	MightContain(e E) bool

	// Insertions returns the number of distinct elements admitted so far.
	Insertions() int

	// Capacity returns the maximum distinct-element count, or
	// UnboundedCapacity for a scalable filter.
	Capacity() int

	// FalsePositiveProbability returns the construction-time target.
	FalsePositiveProbability() float64

	// Serialize encodes the filter as a self-describing blob. Scalable
	// filters have no stable blob representation and fail with
	// ErrUnsupported.
	Serialize() ([]byte, error)
}

const (
	defaultInitialCapacity = 1024
	defaultGrowthRate      = 0.5
)

// Option configures filter construction.
type Option func(*config)

type config struct {
	seed            uint32
	seedSet         bool
	initialCapacity int
	growthRate      float64
}

func defaultConfig() config {
	return config{
		initialCapacity: defaultInitialCapacity,
		growthRate:      defaultGrowthRate,
	}
}

// WithSeed overrides the hasher's default seed for the first hash of the
// double-hashing pair. Filters built with different seeds produce
// incompatible bit patterns; a serialized filter must be deserialized with
// the seed it was built with.
func WithSeed(seed uint32) Option {
	return func(c *config) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithInitialCapacity sets the first shard's capacity for scalable filters.
// Ignored by fixed-capacity filters.
func WithInitialCapacity(n int) Option {
	return func(c *config) {
		c.initialCapacity = n
	}
}

// WithGrowthRate sets the scalable growth rate r in (0, 1): shard i holds
// initialCapacity * (1/r)^i elements at false-positive target
// baseFpp * r^i. Smaller r grows faster. Ignored by fixed-capacity filters.
func WithGrowthRate(r float64) Option {
	return func(c *config) {
		c.growthRate = r
	}
}

// New is the filter factory. capacity > 0 yields a fixed-capacity filter;
// capacity == UnboundedCapacity yields a scalable filter whose first shard
// is sized by WithInitialCapacity (default 1024); any other capacity fails
// with ErrInvalidCapacity. fpp must be in (0, 1) in both branches.
func New[E any](capacity int, fpp float64, h Hasher[E], opts ...Option) (Filter[E], error) {
	switch {
	case capacity == UnboundedCapacity:
		return NewScalable(fpp, h, opts...)
	case capacity > 0:
		return NewFixed(capacity, fpp, h, opts...)
	default:
		return nil, sberrors.ErrInvalidCapacity
	}
}
