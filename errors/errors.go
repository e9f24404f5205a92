// Package errors defines all exported error sentinels for the scalebloom
// library.
//
// This is the single source of truth for error values. Both the top-level
// scalebloom package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrInvalidCapacity   = errors.New("scalebloom: capacity must be positive or UnboundedCapacity")
	ErrInvalidFPP        = errors.New("scalebloom: false-positive probability must be in (0, 1)")
	ErrInvalidGrowthRate = errors.New("scalebloom: growth rate must be in (0, 1)")
	ErrFilterTooLarge    = errors.New("scalebloom: derived bit vector exceeds maximum addressable size")
	ErrNilHasher         = errors.New("scalebloom: hasher must not be nil")
)

// Serialization errors
var (
	ErrUnsupported    = errors.New("scalebloom: operation not supported")
	ErrTruncated      = errors.New("scalebloom: serialized filter is truncated")
	ErrCorrupted      = errors.New("scalebloom: serialized filter is structurally inconsistent")
	ErrInvalidMagic   = errors.New("scalebloom: invalid magic number")
	ErrInvalidVersion = errors.New("scalebloom: unsupported format version")
	ErrChecksumFailed = errors.New("scalebloom: filter checksum verification failed")
)

// Reader errors
var (
	ErrReaderClosed = errors.New("scalebloom: reader is closed")
)
