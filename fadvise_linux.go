//go:build linux

package scalebloom

import "golang.org/x/sys/unix"

// fadviseRandom hints to the kernel that the filter file will be probed at
// random offsets, disabling readahead. Best-effort: errors are silently
// ignored.
func fadviseRandom(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_RANDOM)
}
