//go:build !linux

package scalebloom

// fadviseRandom is a no-op on non-Linux platforms.
// FADV_RANDOM is Linux-specific.
func fadviseRandom(fd int, offset, length int64) {
	// No-op
}
