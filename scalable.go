package scalebloom

import (
	"errors"
	"math"
	"slices"

	sberrors "github.com/tamirms/scalebloom/errors"
)

// Scalable is a capacity-less filter built from a chain of fixed-capacity
// shards with a geometric growth policy.
//
// Shard i (counted from the oldest) holds initialCapacity * (1/growthRate)^i
// elements at false-positive target baseFpp * growthRate^i: later shards are
// larger and individually tighter, which keeps the aggregate false-positive
// rate from drifting upward as elements accumulate. Shards are only ever
// prepended; the head (newest) shard is the only one mutated by inserts.
//
// Queries scan the whole chain, so lookup cost grows linearly with shard
// count. That is the price of unbounded capacity.
type Scalable[E any] struct {
	hasher Hasher[E]

	initialCapacity int
	baseFpp         float64
	growthRate      float64
	opts            []Option

	// shards is ordered newest first: shards[0] is the head.
	shards []*Fixed[E]
}

// NewScalable constructs a scalable filter with base false-positive target
// fpp. WithInitialCapacity and WithGrowthRate tune the growth policy.
func NewScalable[E any](fpp float64, h Hasher[E], opts ...Option) (*Scalable[E], error) {
	if h == nil {
		return nil, sberrors.ErrNilHasher
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateFPP(fpp); err != nil {
		return nil, err
	}
	if cfg.initialCapacity <= 0 {
		return nil, sberrors.ErrInvalidCapacity
	}
	if !(cfg.growthRate > 0 && cfg.growthRate < 1) {
		return nil, sberrors.ErrInvalidGrowthRate
	}

	s := &Scalable[E]{
		hasher:          h,
		initialCapacity: cfg.initialCapacity,
		baseFpp:         fpp,
		growthRate:      cfg.growthRate,
		opts:            slices.Clone(opts),
	}

	head, err := s.newShard(0)
	if err != nil {
		return nil, err
	}
	s.shards = []*Fixed[E]{head}
	return s, nil
}

// newShard builds shard i of the geometric sequence. When the exact
// geometry would exceed the addressable bit-vector range, the capacity is
// scaled back by growthRate until it fits, so growth itself never fails.
func (s *Scalable[E]) newShard(i int) (*Fixed[E], error) {
	// Far down the chain the float sequence can overflow; cap before
	// converting and let the fit loop below settle the final size.
	exact := float64(s.initialCapacity) * math.Pow(1/s.growthRate, float64(i))
	capacity := math.MaxInt32
	if exact < math.MaxInt32 {
		capacity = int(math.Round(exact))
	}
	if capacity < s.initialCapacity {
		capacity = s.initialCapacity
	}
	fpp := s.baseFpp * math.Pow(s.growthRate, float64(i))
	if fpp <= 0 {
		fpp = math.SmallestNonzeroFloat64
	}

	for {
		shard, err := NewFixed(capacity, fpp, s.hasher, s.opts...)
		if err == nil {
			return shard, nil
		}
		if !errors.Is(err, sberrors.ErrFilterTooLarge) || capacity <= s.initialCapacity {
			return nil, err
		}
		capacity = int(float64(capacity) * s.growthRate)
		if capacity < s.initialCapacity {
			capacity = s.initialCapacity
		}
	}
}

// Insert admits e into the head shard, prepending a fresh shard first if
// the head is saturated. Growth is unconditional: insertion into a scalable
// filter never reports RejectedAtCapacity.
func (s *Scalable[E]) Insert(e E) InsertOutcome {
	head := s.shards[0]
	if head.Insertions() >= head.Capacity() {
		next, err := s.newShard(len(s.shards))
		if err != nil {
			// Unreachable for valid construction parameters: newShard
			// degrades capacity until the geometry fits.
			return RejectedAtCapacity
		}
		s.shards = slices.Insert(s.shards, 0, next)
		head = next
	}
	return head.Insert(e)
}

// MightContain reports whether any shard in the chain may contain e.
func (s *Scalable[E]) MightContain(e E) bool {
	for _, shard := range s.shards {
		if shard.MightContain(e) {
			return true
		}
	}
	return false
}

// Insertions returns the sum of all shards' counters.
func (s *Scalable[E]) Insertions() int {
	var n int
	for _, shard := range s.shards {
		n += shard.Insertions()
	}
	return n
}

// Capacity returns UnboundedCapacity.
func (s *Scalable[E]) Capacity() int { return UnboundedCapacity }

// FalsePositiveProbability returns the base target of the growth sequence.
func (s *Scalable[E]) FalsePositiveProbability() float64 { return s.baseFpp }

// ShardCount returns the current chain length.
func (s *Scalable[E]) ShardCount() int { return len(s.shards) }

// ShardSnapshots returns a defensive occupancy copy per shard, newest
// first, for diagnostics and external visualization.
func (s *Scalable[E]) ShardSnapshots() []Snapshot {
	out := make([]Snapshot, len(s.shards))
	for i, shard := range s.shards {
		out[i] = shard.Snapshot()
	}
	return out
}

// Serialize fails with ErrUnsupported: an open-ended shard chain has no
// stable blob representation. Callers needing persistence should serialize
// each shard independently alongside their own ordering metadata.
func (s *Scalable[E]) Serialize() ([]byte, error) {
	return nil, sberrors.ErrUnsupported
}

var _ Filter[[]byte] = (*Scalable[[]byte])(nil)
