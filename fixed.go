package scalebloom

import (
	sberrors "github.com/tamirms/scalebloom/errors"
	"github.com/tamirms/scalebloom/internal/bitvec"
)

// Fixed is a fixed-capacity partitioned Bloom filter.
//
// The bit vector is split into sliceCount disjoint slices of bitsPerSlice
// bits; each inserted element activates exactly one bit per slice. Keeping
// the slices disjoint lets every slice approach its expected ~50% fill
// independently, which is the fill that minimizes false positives for a
// fixed total bit budget.
//
// Capacity and the false-positive target are immutable; only the bit vector
// and insertion counter mutate, monotonically. Once Insertions() reaches
// Capacity(), further inserts are rejected without mutation: the fpp bound
// only holds up to capacity.
type Fixed[E any] struct {
	hasher Hasher[E]
	seed   uint32

	capacity int
	fpp      float64
	geometry params

	bits       *bitvec.Vector
	insertions int
}

// NewFixed constructs a fixed-capacity filter for capacity distinct
// elements at false-positive target fpp. It fails with ErrInvalidCapacity,
// ErrInvalidFPP, or ErrFilterTooLarge when the derived bit vector exceeds
// the addressable range.
func NewFixed[E any](capacity int, fpp float64, h Hasher[E], opts ...Option) (*Fixed[E], error) {
	if h == nil {
		return nil, sberrors.ErrNilHasher
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	geom, err := deriveParams(capacity, fpp)
	if err != nil {
		return nil, err
	}

	seed := h.Seed()
	if cfg.seedSet {
		seed = cfg.seed
	}
	return &Fixed[E]{
		hasher:   h,
		seed:     seed,
		capacity: capacity,
		fpp:      fpp,
		geometry: geom,
		bits:     bitvec.New(uint32(geom.totalBits())),
	}, nil
}

// hashPair derives the element's two chained hashes: x under the filter
// seed, then y under x. Chaining, not a second fixed seed, is what makes y
// statistically independent of x.
func (f *Fixed[E]) hashPair(e E) (x, y uint32) {
	x = f.hasher.Sum32(e, f.seed)
	y = f.hasher.Sum32(e, x)
	return x, y
}

// position returns the activated bit for slice i via enhanced double
// hashing: abs(x + i*y) mod bitsPerSlice, offset into slice i's region.
func (f *Fixed[E]) position(x, y, i uint32) uint32 {
	v := int64(int32(x)) + int64(i)*int64(int32(y))
	if v < 0 {
		v = -v
	}
	return i*f.geometry.bitsPerSlice + uint32(v%int64(f.geometry.bitsPerSlice))
}

func (f *Fixed[E]) patternSet(x, y uint32) bool {
	for i := uint32(0); i < f.geometry.sliceCount; i++ {
		if !f.bits.Test(f.position(x, y, i)) {
			return false
		}
	}
	return true
}

// Insert admits e. An element whose pattern is already fully set reports
// AlreadyPresent without consuming capacity: capacity accounting assumes
// every counted insertion is a distinct new element. A saturated filter
// reports RejectedAtCapacity and mutates nothing.
func (f *Fixed[E]) Insert(e E) InsertOutcome {
	x, y := f.hashPair(e)
	if f.patternSet(x, y) {
		return AlreadyPresent
	}
	if f.insertions >= f.capacity {
		return RejectedAtCapacity
	}
	for i := uint32(0); i < f.geometry.sliceCount; i++ {
		f.bits.Set(f.position(x, y, i))
	}
	f.insertions++
	return Accepted
}

// MightContain reports whether every bit of e's pattern is set.
func (f *Fixed[E]) MightContain(e E) bool {
	x, y := f.hashPair(e)
	return f.patternSet(x, y)
}

// Insertions returns the distinct elements admitted so far.
func (f *Fixed[E]) Insertions() int { return f.insertions }

// Capacity returns the maximum distinct-element count.
func (f *Fixed[E]) Capacity() int { return f.capacity }

// FalsePositiveProbability returns the construction-time target.
func (f *Fixed[E]) FalsePositiveProbability() float64 { return f.fpp }

// SliceCount returns k, the number of hash functions and bit-vector
// partitions.
func (f *Fixed[E]) SliceCount() int { return int(f.geometry.sliceCount) }

// BitsPerSlice returns m, the width of each partition.
func (f *Fixed[E]) BitsPerSlice() int { return int(f.geometry.bitsPerSlice) }

// Snapshot is a read-only copy of filter occupancy for diagnostics and
// external visualization. It never aliases live filter state.
type Snapshot struct {
	// SetBits holds the set positions of the flat bit vector, ascending.
	SetBits []uint32

	// SliceCount and BitsPerSlice describe the partition boundaries:
	// slice i spans [i*BitsPerSlice, (i+1)*BitsPerSlice).
	SliceCount   int
	BitsPerSlice int

	Capacity   int
	Insertions int
}

// Snapshot returns a defensive copy of the current occupancy.
func (f *Fixed[E]) Snapshot() Snapshot {
	return Snapshot{
		SetBits:      f.bits.Positions(),
		SliceCount:   int(f.geometry.sliceCount),
		BitsPerSlice: int(f.geometry.bitsPerSlice),
		Capacity:     f.capacity,
		Insertions:   f.insertions,
	}
}

// FillRatios returns each slice's fraction of set bits. At full capacity
// every slice is expected to sit near 0.5.
func (f *Fixed[E]) FillRatios() []float64 {
	counts := make([]uint32, f.geometry.sliceCount)
	for _, pos := range f.bits.Positions() {
		counts[pos/f.geometry.bitsPerSlice]++
	}
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c) / float64(f.geometry.bitsPerSlice)
	}
	return out
}

// Serialize encodes the filter in the legacy big-endian wire format. See
// the package documentation for the layout.
func (f *Fixed[E]) Serialize() ([]byte, error) {
	return appendLegacy(nil, f), nil
}

// SerializePacked encodes the filter in the packed v2 container format:
// denser than the legacy hex trailer and integrity-checked with xxHash64.
// Packed blobs can also be queried in place via OpenBytes or, from a file,
// Open.
func (f *Fixed[E]) SerializePacked() ([]byte, error) {
	return appendPacked(nil, f), nil
}

var _ Filter[[]byte] = (*Fixed[[]byte])(nil)
