package scalebloom

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	sberrors "github.com/tamirms/scalebloom/errors"
)

// Packed v2 container format (little-endian). Denser than the legacy hex
// trailer and queryable in place, which is what the mmap-backed Reader
// relies on.
//
//	Offset  Size  Field
//	0       4     Magic            0x424C4DB1
//	4       2     Version          0x0002
//	6       2     Reserved         (zero)
//	8       4     Capacity         uint32
//	12      4     InsertionCount   uint32
//	16      8     FPP              IEEE-754 float64 bits
//	24      4     WordCount        uint32
//	28      4     Reserved         (zero)
//	32      8*W   Bit vector       uint64 words, LSB0
//	end-8   8     Checksum         xxHash64 of bytes [0, end-8)
const (
	// packedMagic's low byte (0xB1) is written first in little-endian
	// order. A legacy blob starts with a big-endian non-negative capacity,
	// so its first byte is always < 0x80; the two formats can never be
	// confused.
	packedMagic = uint32(0x424C4DB1)

	packedVersion = uint16(0x0002)

	packedHeaderSize = 32
	packedFooterSize = 8
)

// appendPacked encodes f in the packed v2 format, appending to dst.
func appendPacked[E any](dst []byte, f *Fixed[E]) []byte {
	words := f.bits.Words()
	start := len(dst)

	var hdr [packedHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], packedMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], packedVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(f.capacity))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(f.insertions))
	binary.LittleEndian.PutUint64(hdr[16:24], math.Float64bits(f.fpp))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(len(words)))
	dst = append(dst, hdr[:]...)

	var word [8]byte
	for _, w := range words {
		binary.LittleEndian.PutUint64(word[:], w)
		dst = append(dst, word[:]...)
	}

	sum := xxhash.Sum64(dst[start:])
	binary.LittleEndian.PutUint64(word[:], sum)
	return append(dst, word[:]...)
}

func decodePacked[E any](data []byte, h Hasher[E], opts ...Option) (*Fixed[E], error) {
	if len(data) < packedHeaderSize+packedFooterSize {
		return nil, sberrors.ErrTruncated
	}
	if binary.LittleEndian.Uint32(data[0:4]) != packedMagic {
		return nil, sberrors.ErrInvalidMagic
	}
	if binary.LittleEndian.Uint16(data[4:6]) != packedVersion {
		return nil, sberrors.ErrInvalidVersion
	}

	capacity := binary.LittleEndian.Uint32(data[8:12])
	insertions := binary.LittleEndian.Uint32(data[12:16])
	fpp := math.Float64frombits(binary.LittleEndian.Uint64(data[16:24]))
	wordCount := binary.LittleEndian.Uint32(data[24:28])

	body := packedHeaderSize + int(wordCount)*8
	if len(data) < body+packedFooterSize {
		return nil, sberrors.ErrTruncated
	}
	if len(data) != body+packedFooterSize {
		return nil, sberrors.ErrCorrupted
	}
	want := binary.LittleEndian.Uint64(data[body:])
	if xxhash.Sum64(data[:body]) != want {
		return nil, sberrors.ErrChecksumFailed
	}

	if capacity == 0 || capacity > math.MaxInt32 || !(fpp > 0 && fpp < 1) {
		return nil, sberrors.ErrCorrupted
	}
	f, err := NewFixed(int(capacity), fpp, h, opts...)
	if err != nil {
		return nil, sberrors.ErrCorrupted
	}
	if insertions > capacity {
		return nil, sberrors.ErrCorrupted
	}
	if uint64(wordCount) != (f.geometry.totalBits()+63)/64 {
		return nil, sberrors.ErrCorrupted
	}

	words := make([]uint64, wordCount)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[packedHeaderSize+i*8:])
	}
	// The top word must not carry bits beyond the declared geometry.
	if !f.bits.SetWords(words) {
		return nil, sberrors.ErrCorrupted
	}
	if hi, ok := f.bits.HighestSet(); ok && uint64(hi) >= f.geometry.totalBits() {
		return nil, sberrors.ErrCorrupted
	}
	f.insertions = int(insertions)
	return f, nil
}
