package scalebloom

import (
	"encoding/binary"
	"math"

	sberrors "github.com/tamirms/scalebloom/errors"
	"github.com/tamirms/scalebloom/internal/bitvec"
)

// Legacy wire format (big-endian). This layout is preserved for
// compatibility with previously serialized filters; the packed v2 format in
// format.go is the denser alternative.
//
//	Offset  Size  Field
//	0       4     capacity (int32)
//	4       8     fpp (IEEE-754 float64)
//	12      4     insertionCount (int32)
//	16      4     L: highest set bit index + 1, or 0 when no bit is set
//	20      var   bit vector as an unsigned integer, lowercase ASCII hex;
//	              empty when L is 0
const legacyHeaderSize = 20

// appendLegacy encodes f in the legacy format, appending to dst.
func appendLegacy[E any](dst []byte, f *Fixed[E]) []byte {
	var hdr [legacyHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(int32(f.capacity)))
	binary.BigEndian.PutUint64(hdr[4:12], math.Float64bits(f.fpp))
	binary.BigEndian.PutUint32(hdr[12:16], uint32(int32(f.insertions)))

	var trailerLen uint32
	if hi, ok := f.bits.HighestSet(); ok {
		trailerLen = hi + 1
	}
	binary.BigEndian.PutUint32(hdr[16:20], trailerLen)

	dst = append(dst, hdr[:]...)
	return f.bits.AppendHex(dst)
}

// Deserialize reconstructs a fixed-capacity filter from a blob produced by
// Serialize or SerializePacked; the two formats are distinguished by the
// packed magic number. The hasher (and WithSeed, if the filter was built
// with one) must match the serializing filter, or membership answers will
// not reproduce.
//
// Malformed input fails with ErrTruncated or ErrCorrupted (legacy format),
// or ErrInvalidMagic, ErrInvalidVersion, ErrChecksumFailed, ErrTruncated,
// or ErrCorrupted (packed format).
func Deserialize[E any](data []byte, h Hasher[E], opts ...Option) (*Fixed[E], error) {
	if h == nil {
		return nil, sberrors.ErrNilHasher
	}
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == packedMagic {
		return decodePacked(data, h, opts...)
	}
	return decodeLegacy(data, h, opts...)
}

func decodeLegacy[E any](data []byte, h Hasher[E], opts ...Option) (*Fixed[E], error) {
	if len(data) < legacyHeaderSize {
		return nil, sberrors.ErrTruncated
	}

	capacity := int32(binary.BigEndian.Uint32(data[0:4]))
	fpp := math.Float64frombits(binary.BigEndian.Uint64(data[4:12]))
	insertions := int32(binary.BigEndian.Uint32(data[12:16]))
	trailerLen := binary.BigEndian.Uint32(data[16:20])
	trailer := data[legacyHeaderSize:]

	if capacity <= 0 || !(fpp > 0 && fpp < 1) {
		return nil, sberrors.ErrCorrupted
	}
	f, err := NewFixed(int(capacity), fpp, h, opts...)
	if err != nil {
		return nil, sberrors.ErrCorrupted
	}
	if insertions < 0 || insertions > capacity {
		return nil, sberrors.ErrCorrupted
	}
	if uint64(trailerLen) > f.geometry.totalBits() {
		return nil, sberrors.ErrCorrupted
	}

	if trailerLen == 0 {
		if len(trailer) != 0 {
			return nil, sberrors.ErrCorrupted
		}
		f.insertions = int(insertions)
		return f, nil
	}

	// The highest set bit is trailerLen-1, which pins the hex digit count
	// exactly: no leading zeros, top digit nonzero.
	wantDigits := int(trailerLen-1)/4 + 1
	if len(trailer) < wantDigits {
		return nil, sberrors.ErrTruncated
	}
	if len(trailer) != wantDigits {
		return nil, sberrors.ErrCorrupted
	}

	bits, err := bitvec.ParseHex(trailer, f.bits.Len())
	if err != nil {
		return nil, sberrors.ErrCorrupted
	}
	hi, ok := bits.HighestSet()
	if !ok || hi != trailerLen-1 {
		return nil, sberrors.ErrCorrupted
	}

	f.bits = bits
	f.insertions = int(insertions)
	return f, nil
}
