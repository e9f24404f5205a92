package scalebloom

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	sberrors "github.com/tamirms/scalebloom/errors"
)

// Reader answers membership queries directly against a packed v2 blob,
// typically a memory-mapped file, without materializing a bit vector on the
// heap.
//
// Thread safety:
//   - MightContain and the accessor methods are safe for concurrent use
//   - Close is NOT safe to call concurrently with queries
//   - After Close returns, no methods may be called on the Reader
type Reader[E any] struct {
	// Memory map (no file handle needed after mmap); nil for OpenBytes.
	mmap mmap.MMap
	data []byte

	hasher Hasher[E]
	seed   uint32

	capacity   int
	insertions int
	fpp        float64
	geometry   params

	// words is the bit-vector region of data.
	words []byte

	closed atomic.Bool
}

// WriteFile writes the filter to path in the packed v2 format, suitable for
// Open.
func (f *Fixed[E]) WriteFile(path string) error {
	blob, err := f.SerializePacked()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write filter file: %w", err)
	}
	return nil
}

// Open opens a packed filter file for querying. The hasher (and WithSeed,
// if used at build time) must match the filter that produced the file.
func Open[E any](path string, h Hasher[E], opts ...Option) (*Reader[E], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filter file: %w", err)
	}
	defer file.Close()
	return OpenFile(file, h, opts...)
}

// OpenFile opens a packed filter by memory-mapping the given file. The
// caller is responsible for closing f; per POSIX mmap(2), f may be closed
// immediately after OpenFile returns.
func OpenFile[E any](f *os.File, h Hasher[E], opts ...Option) (*Reader[E], error) {
	if h == nil {
		return nil, sberrors.ErrNilHasher
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat filter file: %w", err)
	}
	size := stat.Size()
	if size < packedHeaderSize+packedFooterSize {
		return nil, sberrors.ErrTruncated
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap filter file: %w", err)
	}

	// Membership probes touch the map at random offsets; tell the kernel
	// up front. Best effort on both counts.
	fadviseRandom(int(f.Fd()), 0, size)
	prefaultRegion(mm)

	r := &Reader[E]{mmap: mm, data: []byte(mm), hasher: h}
	if err := r.initFromData(opts...); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// OpenBytes creates a Reader over an in-memory packed blob. No file is
// opened or mapped; Close is a no-op. The caller must not modify data while
// the Reader is in use.
func OpenBytes[E any](data []byte, h Hasher[E], opts ...Option) (*Reader[E], error) {
	if h == nil {
		return nil, sberrors.ErrNilHasher
	}
	r := &Reader[E]{data: data, hasher: h}
	if err := r.initFromData(opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// initFromData validates the packed container and wires the Reader's view
// into it. Unlike Deserialize, no bit vector is copied out.
func (r *Reader[E]) initFromData(opts ...Option) error {
	data := r.data
	if len(data) < packedHeaderSize+packedFooterSize {
		return sberrors.ErrTruncated
	}
	if binary.LittleEndian.Uint32(data[0:4]) != packedMagic {
		return sberrors.ErrInvalidMagic
	}
	if binary.LittleEndian.Uint16(data[4:6]) != packedVersion {
		return sberrors.ErrInvalidVersion
	}

	capacity := binary.LittleEndian.Uint32(data[8:12])
	insertions := binary.LittleEndian.Uint32(data[12:16])
	fpp := math.Float64frombits(binary.LittleEndian.Uint64(data[16:24]))
	wordCount := binary.LittleEndian.Uint32(data[24:28])

	body := packedHeaderSize + int(wordCount)*8
	if len(data) < body+packedFooterSize {
		return sberrors.ErrTruncated
	}
	if len(data) != body+packedFooterSize {
		return sberrors.ErrCorrupted
	}
	if xxhash.Sum64(data[:body]) != binary.LittleEndian.Uint64(data[body:]) {
		return sberrors.ErrChecksumFailed
	}

	if capacity == 0 || capacity > math.MaxInt32 || !(fpp > 0 && fpp < 1) {
		return sberrors.ErrCorrupted
	}
	geom, err := deriveParams(int(capacity), fpp)
	if err != nil {
		return sberrors.ErrCorrupted
	}
	if insertions > capacity {
		return sberrors.ErrCorrupted
	}
	if uint64(wordCount) != (geom.totalBits()+63)/64 {
		return sberrors.ErrCorrupted
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	r.seed = r.hasher.Seed()
	if cfg.seedSet {
		r.seed = cfg.seed
	}
	r.capacity = int(capacity)
	r.insertions = int(insertions)
	r.fpp = fpp
	r.geometry = geom
	r.words = data[packedHeaderSize:body]
	return nil
}

func (r *Reader[E]) testBit(i uint32) bool {
	w := binary.LittleEndian.Uint64(r.words[(i/64)*8:])
	return w&(1<<(i%64)) != 0
}

// MightContain reports whether e may have been inserted into the filter
// that produced the blob. Returns false after Close.
func (r *Reader[E]) MightContain(e E) bool {
	if r.closed.Load() {
		return false
	}
	x := r.hasher.Sum32(e, r.seed)
	y := r.hasher.Sum32(e, x)
	for i := uint32(0); i < r.geometry.sliceCount; i++ {
		v := int64(int32(x)) + int64(i)*int64(int32(y))
		if v < 0 {
			v = -v
		}
		pos := i*r.geometry.bitsPerSlice + uint32(v%int64(r.geometry.bitsPerSlice))
		if !r.testBit(pos) {
			return false
		}
	}
	return true
}

// Insertions returns the serialized distinct-element count.
func (r *Reader[E]) Insertions() int { return r.insertions }

// Capacity returns the serialized capacity.
func (r *Reader[E]) Capacity() int { return r.capacity }

// FalsePositiveProbability returns the serialized target.
func (r *Reader[E]) FalsePositiveProbability() float64 { return r.fpp }

// Close unmaps the underlying file, if any. The Reader is unusable after
// Close.
func (r *Reader[E]) Close() error {
	if r.closed.Swap(true) {
		return sberrors.ErrReaderClosed
	}
	r.words = nil
	r.data = nil
	if r.mmap != nil {
		mm := r.mmap
		r.mmap = nil
		if err := mm.Unmap(); err != nil {
			return fmt.Errorf("unmap filter file: %w", err)
		}
	}
	return nil
}
