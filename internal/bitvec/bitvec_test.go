package bitvec

import (
	"errors"
	"slices"
	"testing"
)

func TestSetAndTest(t *testing.T) {
	v := New(200)
	for _, i := range []uint32{0, 1, 63, 64, 127, 128, 199} {
		if v.Test(i) {
			t.Errorf("bit %d set in fresh vector", i)
		}
		v.Set(i)
		if !v.Test(i) {
			t.Errorf("bit %d not set after Set", i)
		}
	}
	if v.Test(2) || v.Test(100) {
		t.Error("untouched bits reported set")
	}
}

func TestCardinalityAndPositions(t *testing.T) {
	v := New(300)
	want := []uint32{3, 64, 65, 190, 255, 299}
	for _, i := range want {
		v.Set(i)
	}
	if got := v.Cardinality(); got != uint32(len(want)) {
		t.Errorf("Cardinality = %d, want %d", got, len(want))
	}
	if got := v.Positions(); !slices.Equal(got, want) {
		t.Errorf("Positions = %v, want %v", got, want)
	}
}

func TestHighestSet(t *testing.T) {
	v := New(130)
	if _, ok := v.HighestSet(); ok {
		t.Error("HighestSet ok on empty vector")
	}
	v.Set(0)
	if hi, ok := v.HighestSet(); !ok || hi != 0 {
		t.Errorf("HighestSet = %d,%v, want 0,true", hi, ok)
	}
	v.Set(129)
	if hi, ok := v.HighestSet(); !ok || hi != 129 {
		t.Errorf("HighestSet = %d,%v, want 129,true", hi, ok)
	}
}

func TestWordsDefensiveCopy(t *testing.T) {
	v := New(64)
	v.Set(5)
	w := v.Words()
	w[0] = 0
	if !v.Test(5) {
		t.Error("mutating Words() result mutated the vector")
	}
}

func TestEqual(t *testing.T) {
	a, b := New(100), New(100)
	a.Set(42)
	if a.Equal(b) {
		t.Error("distinct contents reported equal")
	}
	b.Set(42)
	if !a.Equal(b) {
		t.Error("identical contents reported unequal")
	}
	if a.Equal(New(101)) {
		t.Error("distinct lengths reported equal")
	}
}

// =============================================================================
// Hex codec
// =============================================================================

func TestAppendHexKnownValues(t *testing.T) {
	cases := []struct {
		name string
		n    uint32
		bits []uint32
		want string
	}{
		{"empty", 64, nil, ""},
		{"bit0", 64, []uint32{0}, "1"},
		{"bits0and1", 64, []uint32{0, 1}, "3"},
		{"bit4", 64, []uint32{4}, "10"},
		{"bit63", 64, []uint32{63}, "8000000000000000"},
		{"bit64", 130, []uint32{64}, "10000000000000000"},
		{"multiword", 130, []uint32{0, 64, 129}, "20000000000000001" + "0000000000000001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := New(tc.n)
			for _, b := range tc.bits {
				v.Set(b)
			}
			if got := string(v.AppendHex(nil)); got != tc.want {
				t.Errorf("AppendHex = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	v := New(513)
	for _, b := range []uint32{0, 7, 63, 64, 128, 300, 511, 512} {
		v.Set(b)
	}
	text := v.AppendHex(nil)
	got, err := ParseHex(text, 513)
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if !got.Equal(v) {
		t.Error("round trip did not reproduce the vector")
	}
}

func TestParseHexEmpty(t *testing.T) {
	v, err := ParseHex(nil, 100)
	if err != nil {
		t.Fatalf("ParseHex(nil): %v", err)
	}
	if v.Cardinality() != 0 || v.Len() != 100 {
		t.Error("empty text should decode to an all-zero vector")
	}
}

func TestParseHexErrors(t *testing.T) {
	if _, err := ParseHex([]byte("12g4"), 64); !errors.Is(err, ErrInvalidHex) {
		t.Errorf("non-hex digit: got %v, want ErrInvalidHex", err)
	}
	// 0x100 has bit 8 set, out of range for an 8-bit vector.
	if _, err := ParseHex([]byte("100"), 8); !errors.Is(err, ErrInvalidHex) {
		t.Errorf("overflowing value: got %v, want ErrInvalidHex", err)
	}
	// A value wider than the backing words entirely.
	if _, err := ParseHex([]byte("10000000000000000"), 8); !errors.Is(err, ErrInvalidHex) {
		t.Errorf("extra-word value: got %v, want ErrInvalidHex", err)
	}
}

func TestSetWords(t *testing.T) {
	v := New(128)
	if v.SetWords([]uint64{1}) {
		t.Error("SetWords accepted wrong length")
	}
	if !v.SetWords([]uint64{1 << 10, 1}) {
		t.Fatal("SetWords rejected correct length")
	}
	if !v.Test(10) || !v.Test(64) {
		t.Error("SetWords did not install contents")
	}
}
