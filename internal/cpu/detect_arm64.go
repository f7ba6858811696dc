//go:build arm64

package cpu

import "golang.org/x/sys/cpu"

// probe reads Advanced SIMD support, which the mixer treats as NEON.
func probe() Features {
	return Features{HasNEON: cpu.ARM64.HasASIMD}
}
