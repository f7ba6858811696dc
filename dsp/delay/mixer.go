package delay

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-modfx/internal/cpu"
)

// Mixer blends a dry and a wet block: dst[i] = dryGain*dry[i] + wetGain*wet[i].
//
// dst may alias dry. wet is used as scratch and is overwritten. All slices
// must be at least len(dst) long.
type Mixer interface {
	Mix(dst, dry, wet []float64, dryGain, wetGain float64)
	// Lanes reports how many samples the mixer handles per step.
	Lanes() int
}

// ScalarMixer mixes one sample at a time.
type ScalarMixer struct{}

// Mix implements Mixer.
func (ScalarMixer) Mix(dst, dry, wet []float64, dryGain, wetGain float64) {
	dry = dry[:len(dst)]
	wet = wet[:len(dst)]
	for i := range dst {
		dst[i] = dryGain*dry[i] + wetGain*wet[i]
	}
}

// Lanes implements Mixer.
func (ScalarMixer) Lanes() int { return 1 }

// VectorMixer mixes whole blocks with the SIMD kernels of algo-vecmath.
type VectorMixer struct {
	level cpu.SIMDLevel
}

// NewVectorMixer returns a block mixer for the given SIMD level.
func NewVectorMixer(level cpu.SIMDLevel) VectorMixer {
	return VectorMixer{level: level}
}

// Mix implements Mixer.
func (VectorMixer) Mix(dst, dry, wet []float64, dryGain, wetGain float64) {
	n := len(dst)
	vecmath.ScaleBlock(dst, dry[:n], dryGain)
	vecmath.ScaleBlock(wet[:n], wet[:n], wetGain)
	vecmath.AddBlockInPlace(dst, wet[:n])
}

// Lanes implements Mixer.
func (m VectorMixer) Lanes() int { return m.level.Lanes() }

// Level returns the SIMD level the mixer was built for.
func (m VectorMixer) Level() cpu.SIMDLevel { return m.level }

// DefaultMixer picks the vector mixer when the CPU has a usable SIMD level
// and the scalar mixer otherwise.
func DefaultMixer() Mixer {
	level := cpu.DetectFeatures().Best()
	if level == cpu.SIMDNone {
		return ScalarMixer{}
	}
	return NewVectorMixer(level)
}
