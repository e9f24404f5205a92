//go:build linux

package scalebloom

import "golang.org/x/sys/unix"

// prefaultRegion asks the kernel to fault the mapped filter in ahead of the
// first probes. Best-effort: errors are silently ignored.
func prefaultRegion(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
}
