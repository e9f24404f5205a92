package scalebloom

import (
	"encoding/binary"
	"math"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Hasher maps elements of type E to 32-bit hashes under a caller-supplied
// seed. Implementations must be deterministic: equal elements under equal
// seeds always produce equal hashes.
//
// Filters derive two hashes per element by chaining: the first hash, taken
// under Seed(), becomes the seed of the second. A Hasher therefore needs no
// second seed of its own.
type Hasher[E any] interface {
	// Sum32 returns the 32-bit hash of e under seed.
	Sum32(e E, seed uint32) uint32

	// Seed returns the default seed for the first hash of the pair.
	Seed() uint32
}

// Default seeds, one per supported element type. Arbitrary constants;
// override the first-hash seed with WithSeed.
const (
	bytesSeed   = 0x9747b28c
	stringSeed  = 0x5bd1e995
	int64Seed   = 0xcc9e2d51
	float64Seed = 0x1b873593
	recordSeed  = 0x85ebca6b
)

// BytesHasher hashes raw byte slices with murmur3.
type BytesHasher struct{}

func (BytesHasher) Sum32(b []byte, seed uint32) uint32 {
	return murmur3.Sum32WithSeed(b, seed)
}

func (BytesHasher) Seed() uint32 { return bytesSeed }

// StringHasher hashes text elements with murmur3.
type StringHasher struct{}

func (StringHasher) Sum32(s string, seed uint32) uint32 {
	return murmur3.Sum32WithSeed([]byte(s), seed)
}

func (StringHasher) Seed() uint32 { return stringSeed }

// Int64Hasher hashes 64-bit integers via their little-endian encoding.
type Int64Hasher struct{}

func (Int64Hasher) Sum32(v int64, seed uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return murmur3.Sum32WithSeed(buf[:], seed)
}

func (Int64Hasher) Seed() uint32 { return int64Seed }

// Float64Hasher hashes floating-point elements via their IEEE-754 bit
// pattern. Note +0 and -0 hash differently, and any NaN hashes as its own
// bit pattern.
type Float64Hasher struct{}

func (Float64Hasher) Sum32(v float64, seed uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return murmur3.Sum32WithSeed(buf[:], seed)
}

func (Float64Hasher) Seed() uint32 { return float64Seed }

// RecordHasher hashes structured records through a caller-supplied binary
// encoding. The encoded bytes are canonicalized with xxHash3-128 before
// seeding murmur3, so uneven record encodings (shared prefixes, sparse
// fields) still spread uniformly.
//
// Encode must be deterministic: records that compare equal must encode to
// equal bytes.
type RecordHasher[E any] struct {
	Encode func(E) []byte
}

func (h RecordHasher[E]) Sum32(e E, seed uint32) uint32 {
	sum := xxh3.Hash128(h.Encode(e))
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], sum.Lo)
	binary.LittleEndian.PutUint64(buf[8:16], sum.Hi)
	return murmur3.Sum32WithSeed(buf[:], seed)
}

func (RecordHasher[E]) Seed() uint32 { return recordSeed }
