package scalebloom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"

	sberrors "github.com/tamirms/scalebloom/errors"
)

// =============================================================================
// Legacy format
// =============================================================================

func TestLegacyRoundTrip(t *testing.T) {
	f, err := NewFixed[int64](10, 0.01, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int64{1, 3, 5} {
		if got := f.Insert(v); got != Accepted {
			t.Fatalf("Insert(%d) = %v, want Accepted", v, got)
		}
	}

	blob, err := f.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	g, err := Deserialize(blob, Int64Hasher{})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	want := map[int64]bool{1: true, 2: false, 3: true, 4: false, 5: true}
	for v, present := range want {
		if got := g.MightContain(v); got != present {
			t.Errorf("MightContain(%d) = %v, want %v", v, got, present)
		}
	}
	if g.Capacity() != 10 {
		t.Errorf("Capacity = %d, want 10", g.Capacity())
	}
	if g.FalsePositiveProbability() != 0.01 {
		t.Errorf("FalsePositiveProbability = %v, want 0.01", g.FalsePositiveProbability())
	}
	if g.Insertions() != 3 {
		t.Errorf("Insertions = %d, want 3", g.Insertions())
	}
	if !slices.Equal(f.Snapshot().SetBits, g.Snapshot().SetBits) {
		t.Error("round trip did not reproduce the bit vector")
	}
}

func TestLegacyHeaderLayout(t *testing.T) {
	f, err := NewFixed[int64](10, 0.01, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	f.Insert(7)
	blob, err := f.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	if got := int32(binary.BigEndian.Uint32(blob[0:4])); got != 10 {
		t.Errorf("capacity field = %d, want 10", got)
	}
	if got := math.Float64frombits(binary.BigEndian.Uint64(blob[4:12])); got != 0.01 {
		t.Errorf("fpp field = %v, want 0.01", got)
	}
	if got := int32(binary.BigEndian.Uint32(blob[12:16])); got != 1 {
		t.Errorf("insertionCount field = %d, want 1", got)
	}

	trailerLen := binary.BigEndian.Uint32(blob[16:20])
	snap := f.Snapshot()
	top := snap.SetBits[len(snap.SetBits)-1]
	if trailerLen != top+1 {
		t.Errorf("L field = %d, want %d", trailerLen, top+1)
	}
	wantDigits := int(trailerLen-1)/4 + 1
	if len(blob) != legacyHeaderSize+wantDigits {
		t.Errorf("blob length = %d, want %d", len(blob), legacyHeaderSize+wantDigits)
	}
	for _, c := range blob[legacyHeaderSize:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("trailer byte %q is not a lowercase hex digit", c)
		}
	}
}

func TestLegacyEmptyFilterRoundTrip(t *testing.T) {
	f, err := NewFixed[int64](50, 0.01, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := f.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) != legacyHeaderSize {
		t.Errorf("empty filter blob length = %d, want %d", len(blob), legacyHeaderSize)
	}
	if got := binary.BigEndian.Uint32(blob[16:20]); got != 0 {
		t.Errorf("L field = %d, want 0", got)
	}

	g, err := Deserialize(blob, Int64Hasher{})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if g.Insertions() != 0 {
		t.Errorf("Insertions = %d, want 0", g.Insertions())
	}
	if g.MightContain(1) {
		t.Error("empty deserialized filter claims membership")
	}
}

func TestLegacyNoFalseNegativesAfterRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	f, err := NewFixed[int64](500, 0.001, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	var elems []int64
	for range 300 {
		v := rng.Int64()
		if f.Insert(v) != RejectedAtCapacity {
			elems = append(elems, v)
		}
	}
	blob, err := f.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	g, err := Deserialize(blob, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range elems {
		if !g.MightContain(v) {
			t.Fatalf("false negative for %d after round trip", v)
		}
	}
}

func TestLegacyDeserializeErrors(t *testing.T) {
	f, err := NewFixed[int64](10, 0.01, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int64{1, 3, 5} {
		f.Insert(v)
	}
	blob, err := f.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	corrupt := func(mutate func([]byte)) []byte {
		b := slices.Clone(blob)
		mutate(b)
		return b
	}

	cases := []struct {
		name string
		blob []byte
		want error
	}{
		{"empty", nil, sberrors.ErrTruncated},
		{"short header", blob[:10], sberrors.ErrTruncated},
		{"truncated trailer", blob[:len(blob)-1], sberrors.ErrTruncated},
		{"trailing garbage", append(slices.Clone(blob), 'a'), sberrors.ErrCorrupted},
		{"zero capacity", corrupt(func(b []byte) {
			binary.BigEndian.PutUint32(b[0:4], 0)
		}), sberrors.ErrCorrupted},
		{"negative capacity", corrupt(func(b []byte) {
			binary.BigEndian.PutUint32(b[0:4], uint32(0x80000001))
		}), sberrors.ErrCorrupted},
		{"fpp out of range", corrupt(func(b []byte) {
			binary.BigEndian.PutUint64(b[4:12], math.Float64bits(1.5))
		}), sberrors.ErrCorrupted},
		{"count exceeds capacity", corrupt(func(b []byte) {
			binary.BigEndian.PutUint32(b[12:16], 11)
		}), sberrors.ErrCorrupted},
		{"L exceeds geometry", corrupt(func(b []byte) {
			binary.BigEndian.PutUint32(b[16:20], 1<<30)
		}), sberrors.ErrCorrupted},
		{"non-hex trailer", corrupt(func(b []byte) {
			b[legacyHeaderSize] = 'z'
		}), sberrors.ErrCorrupted},
		{"top digit zeroed", corrupt(func(b []byte) {
			b[legacyHeaderSize] = '0'
		}), sberrors.ErrCorrupted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Deserialize(tc.blob, Int64Hasher{}); !errors.Is(err, tc.want) {
				t.Errorf("Deserialize = %v, want %v", err, tc.want)
			}
		})
	}
}

// =============================================================================
// Packed format
// =============================================================================

func TestPackedRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	f, err := NewFixed[int64](200, 0.001, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	var elems []int64
	for range 150 {
		v := rng.Int64()
		if f.Insert(v) != RejectedAtCapacity {
			elems = append(elems, v)
		}
	}

	blob, err := f.SerializePacked()
	if err != nil {
		t.Fatal(err)
	}
	g, err := Deserialize(blob, Int64Hasher{})
	if err != nil {
		t.Fatalf("Deserialize(packed): %v", err)
	}
	if g.Insertions() != f.Insertions() || g.Capacity() != f.Capacity() {
		t.Error("packed round trip lost counters")
	}
	for _, v := range elems {
		if !g.MightContain(v) {
			t.Fatalf("false negative for %d after packed round trip", v)
		}
	}
	if !slices.Equal(f.Snapshot().SetBits, g.Snapshot().SetBits) {
		t.Error("packed round trip did not reproduce the bit vector")
	}
}

func TestPackedAndLegacyAgree(t *testing.T) {
	f, err := NewFixed[string](100, 0.01, StringHasher{})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"a", "b", "c"} {
		f.Insert(s)
	}
	legacy, err := f.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	packed, err := f.SerializePacked()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(legacy[:4], packed[:4]) {
		t.Fatal("formats are indistinguishable")
	}

	a, err := Deserialize(legacy, StringHasher{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Deserialize(packed, StringHasher{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Snapshot().SetBits, b.Snapshot().SetBits) {
		t.Error("legacy and packed decode to different bit vectors")
	}
}

func TestPackedDeserializeErrors(t *testing.T) {
	f, err := NewFixed[int64](50, 0.01, Int64Hasher{})
	if err != nil {
		t.Fatal(err)
	}
	f.Insert(1)
	blob, err := f.SerializePacked()
	if err != nil {
		t.Fatal(err)
	}

	corrupt := func(mutate func([]byte)) []byte {
		b := slices.Clone(blob)
		mutate(b)
		return b
	}

	cases := []struct {
		name string
		blob []byte
		want error
	}{
		{"truncated body", blob[:len(blob)-9], sberrors.ErrTruncated},
		{"bad version", corrupt(func(b []byte) {
			binary.LittleEndian.PutUint16(b[4:6], 0x0099)
		}), sberrors.ErrInvalidVersion},
		{"flipped word byte", corrupt(func(b []byte) {
			b[packedHeaderSize] ^= 0xFF
		}), sberrors.ErrChecksumFailed},
		{"flipped checksum", corrupt(func(b []byte) {
			b[len(b)-1] ^= 0xFF
		}), sberrors.ErrChecksumFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Deserialize(tc.blob, Int64Hasher{}); !errors.Is(err, tc.want) {
				t.Errorf("Deserialize = %v, want %v", err, tc.want)
			}
		})
	}
}
