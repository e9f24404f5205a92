package scalebloom

import (
	"math"

	sberrors "github.com/tamirms/scalebloom/errors"
)

const (
	// UnboundedCapacity is the sentinel capacity selecting a Scalable
	// filter from New.
	UnboundedCapacity = -1

	// maxTotalBits bounds the flat bit vector length so every bit index
	// fits in non-negative int32 arithmetic.
	maxTotalBits = 1<<31 - 1

	// ln2Squared is ln(2)^2, the denominator constant of the slice sizing
	// formula.
	ln2Squared = math.Ln2 * math.Ln2
)

// params holds the derived geometry of a fixed-capacity filter.
//
// sliceCount (k) is the number of hash functions and disjoint bit-vector
// partitions; bitsPerSlice (m) is the width of each partition. The flat
// vector is k*m bits, with slice i occupying [i*m, (i+1)*m).
type params struct {
	sliceCount   uint32
	bitsPerSlice uint32
}

func (p params) totalBits() uint64 {
	return uint64(p.sliceCount) * uint64(p.bitsPerSlice)
}

// deriveParams computes filter geometry from capacity and target
// false-positive probability:
//
//	k = ceil(log2(1/fpp))
//	m = ceil(2 * capacity * |ln(fpp)| / (k * ln(2)^2))
//
// Partitioning into k disjoint slices (rather than one shared pool of k*m
// bits) keeps every slice at the same expected fill at full capacity,
// preventing the vector from saturating unevenly.
func deriveParams(capacity int, fpp float64) (params, error) {
	if capacity <= 0 {
		return params{}, sberrors.ErrInvalidCapacity
	}
	// The serialized capacity field is a signed 32-bit integer.
	if capacity > math.MaxInt32 {
		return params{}, sberrors.ErrInvalidCapacity
	}
	if !(fpp > 0 && fpp < 1) { // also rejects NaN
		return params{}, sberrors.ErrInvalidFPP
	}

	k := uint32(math.Ceil(math.Log2(1 / fpp)))
	if k == 0 {
		k = 1
	}
	m := math.Ceil((2 * float64(capacity) * math.Abs(math.Log(fpp))) / (float64(k) * ln2Squared))
	if m < 1 {
		m = 1
	}
	if m > maxTotalBits || uint64(k)*uint64(m) > maxTotalBits {
		return params{}, sberrors.ErrFilterTooLarge
	}
	return params{sliceCount: k, bitsPerSlice: uint32(m)}, nil
}

// validateFPP checks fpp independently of capacity, for constructors that
// defer geometry derivation.
func validateFPP(fpp float64) error {
	if !(fpp > 0 && fpp < 1) {
		return sberrors.ErrInvalidFPP
	}
	return nil
}
