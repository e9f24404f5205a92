// Package bitvec provides a fixed-length bit vector used as the backing
// store of a partitioned Bloom filter.
//
// Bit numbering is LSB0: bit j lives in word j/64 at position j%64, so the
// vector read as an unsigned integer has bit j at binary weight 2^j. The hex
// codec (AppendHex, ParseHex) encodes exactly that integer as lowercase
// hexadecimal text with no leading zeros.
package bitvec

import (
	"errors"
	"math/bits"
)

// ErrInvalidHex is returned by ParseHex for text that is not plain
// hexadecimal digits, or that encodes a value wider than the vector.
var ErrInvalidHex = errors.New("bitvec: invalid hex encoding")

const wordBits = 64

// Vector is a fixed-length sequence of bits.
//
// The zero value is an empty vector of length 0; use New for a sized one.
type Vector struct {
	words []uint64
	nbits uint32
}

// New returns a zeroed vector of n bits.
func New(n uint32) *Vector {
	return &Vector{
		words: make([]uint64, (uint64(n)+wordBits-1)/wordBits),
		nbits: n,
	}
}

// Len returns the vector length in bits.
func (v *Vector) Len() uint32 { return v.nbits }

// Set sets bit i. i must be < Len().
func (v *Vector) Set(i uint32) {
	v.words[i/wordBits] |= 1 << (i % wordBits)
}

// Test reports whether bit i is set. i must be < Len().
func (v *Vector) Test(i uint32) bool {
	return v.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Cardinality returns the number of set bits.
func (v *Vector) Cardinality() uint32 {
	var n int
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}
	return uint32(n)
}

// HighestSet returns the position of the highest set bit. ok is false when
// the vector is entirely unset.
func (v *Vector) HighestSet() (pos uint32, ok bool) {
	for i := len(v.words) - 1; i >= 0; i-- {
		if v.words[i] != 0 {
			return uint32(i)*wordBits + uint32(bits.Len64(v.words[i])-1), true
		}
	}
	return 0, false
}

// Positions returns the set bit positions in ascending order.
// The result is freshly allocated on every call.
func (v *Vector) Positions() []uint32 {
	out := make([]uint32, 0, v.Cardinality())
	for i, w := range v.words {
		base := uint32(i) * wordBits
		for w != 0 {
			out = append(out, base+uint32(bits.TrailingZeros64(w)))
			w &= w - 1
		}
	}
	return out
}

// Words returns a defensive copy of the backing words, LSB0 order.
func (v *Vector) Words() []uint64 {
	out := make([]uint64, len(v.words))
	copy(out, v.words)
	return out
}

// SetWords overwrites the backing words from src, which must have exactly
// the backing length for Len() bits.
func (v *Vector) SetWords(src []uint64) bool {
	if len(src) != len(v.words) {
		return false
	}
	copy(v.words, src)
	return true
}

// Equal reports whether v and o have identical length and contents.
func (v *Vector) Equal(o *Vector) bool {
	if v.nbits != o.nbits {
		return false
	}
	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

const hexDigits = "0123456789abcdef"

// AppendHex appends the vector's integer value as lowercase hexadecimal
// text to dst and returns the extended slice. Nothing is appended for an
// all-zero vector.
func (v *Vector) AppendHex(dst []byte) []byte {
	top := -1
	for i := len(v.words) - 1; i >= 0; i-- {
		if v.words[i] != 0 {
			top = i
			break
		}
	}
	if top < 0 {
		return dst
	}

	// Top word without leading zeros, remaining words zero-padded to 16
	// digits each.
	w := v.words[top]
	for shift := (bits.Len64(w) - 1) / 4 * 4; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(w>>uint(shift))&0xf])
	}
	for i := top - 1; i >= 0; i-- {
		w = v.words[i]
		for shift := 60; shift >= 0; shift -= 4 {
			dst = append(dst, hexDigits[(w>>uint(shift))&0xf])
		}
	}
	return dst
}

// ParseHex decodes hexadecimal text produced by AppendHex into a fresh
// vector of n bits. Empty text yields an all-zero vector. Text encoding a
// value with bits at or beyond position n fails with ErrInvalidHex.
func ParseHex(text []byte, n uint32) (*Vector, error) {
	v := New(n)
	if len(text) == 0 {
		return v, nil
	}
	// Consume 16-digit chunks from the tail; the head remainder fills the
	// highest populated word.
	word := 0
	for end := len(text); end > 0; end -= 16 {
		start := end - 16
		if start < 0 {
			start = 0
		}
		var w uint64
		for _, c := range text[start:end] {
			d := hexVal(c)
			if d < 0 {
				return nil, ErrInvalidHex
			}
			w = w<<4 | uint64(d)
		}
		if word >= len(v.words) {
			if w != 0 {
				return nil, ErrInvalidHex
			}
			word++
			continue
		}
		v.words[word] = w
		word++
	}
	if hi, ok := v.HighestSet(); ok && hi >= n {
		return nil, ErrInvalidHex
	}
	return v, nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
