//go:build !linux

package scalebloom

// prefaultRegion is a no-op on non-Linux platforms; the map is faulted in
// on demand by the first probes.
func prefaultRegion(data []byte) {
	// No-op
}
