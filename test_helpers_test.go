package scalebloom

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// fillToCapacity inserts ascending integers starting at base until the
// filter's counter reaches its capacity. Hash collisions can report a fresh
// integer as already present, so the loop is driven by the counter, with a
// generous attempt bound.
func fillToCapacity(t *testing.T, f *Fixed[int64], base int64) (inserted []int64) {
	t.Helper()
	limit := base + int64(f.Capacity())*100
	for v := base; f.Insertions() < f.Capacity(); v++ {
		if v >= limit {
			t.Fatalf("could not fill filter to capacity %d after %d attempts", f.Capacity(), limit-base)
		}
		if f.Insert(v) == Accepted {
			inserted = append(inserted, v)
		}
	}
	return inserted
}
