// Package cpu detects the SIMD extensions used to pick a block mixer.
//
// Detection runs once, lazily, and is cached. Tests can pin a feature set
// with SetForcedFeatures to exercise every mixer on any host.
package cpu

import (
	"runtime"
	"sync"
)

// SIMDLevel is a SIMD instruction set extension level.
type SIMDLevel int

const (
	// SIMDNone selects pure Go loops.
	SIMDNone SIMDLevel = iota
	// SIMDSSE2 is the x86-64 baseline (two float64 lanes).
	SIMDSSE2
	// SIMDAVX2 is x86-64 AVX2 (four float64 lanes).
	SIMDAVX2
	// SIMDNEON is ARM Advanced SIMD (two float64 lanes).
	SIMDNEON
)

// String returns a human-readable name for the SIMD level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "None"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX2:
		return "AVX2"
	case SIMDNEON:
		return "NEON"
	default:
		return "Unknown"
	}
}

// Lanes returns the number of float64 values one instruction processes at
// this level.
func (s SIMDLevel) Lanes() int {
	switch s {
	case SIMDAVX2:
		return 4
	case SIMDSSE2, SIMDNEON:
		return 2
	default:
		return 1
	}
}

// Features describes CPU capabilities relevant to mixer selection.
type Features struct {
	HasSSE2 bool
	HasAVX2 bool
	HasNEON bool

	// ForceGeneric disables all SIMD paths.
	ForceGeneric bool

	// Architecture is runtime.GOARCH.
	Architecture string
}

// Best returns the widest level f supports.
func (f Features) Best() SIMDLevel {
	switch {
	case f.ForceGeneric:
		return SIMDNone
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasSSE2:
		return SIMDSSE2
	case f.HasNEON:
		return SIMDNEON
	default:
		return SIMDNone
	}
}

var (
	detectedFeatures Features
	detectOnce       sync.Once
	detectMutex      sync.Mutex

	forcedFeatures *Features
	forcedMutex    sync.RWMutex
)

// DetectFeatures returns the CPU features of the current system, or the
// forced set if one is installed. Safe for concurrent use.
func DetectFeatures() Features {
	forcedMutex.RLock()
	forced := forcedFeatures
	forcedMutex.RUnlock()

	if forced != nil {
		return *forced
	}

	detectMutex.Lock()
	detectOnce.Do(func() {
		detectedFeatures = probe()
		detectedFeatures.Architecture = runtime.GOARCH
	})
	features := detectedFeatures
	detectMutex.Unlock()

	return features
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	forcedMutex.Lock()
	defer forcedMutex.Unlock()
	forced := f
	forcedFeatures = &forced
}

// ResetDetection clears forced features and the detection cache.
func ResetDetection() {
	forcedMutex.Lock()
	forcedFeatures = nil
	forcedMutex.Unlock()

	detectMutex.Lock()
	detectOnce = sync.Once{}
	detectedFeatures = Features{}
	detectMutex.Unlock()
}
