// Package harmonics measures the harmonic content of a single waveform cycle.
//
// A cycle of N samples is transformed with one N-point FFT; bin k then holds
// harmonic k exactly, so no windowing is applied. This is used to verify
// additive wavetables and to print their partial structure from the CLI.
package harmonics

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-modfx/dsp/core"
)

// ErrCycleLength is returned for cycles whose length is not a power of two >= 2.
var ErrCycleLength = errors.New("harmonics: cycle length must be a power of two >= 2")

// noiseFloor is the amplitude below which a cycle counts as having no
// harmonic content at all.
const noiseFloor = 1e-12

// Result holds the amplitude of every harmonic up to Nyquist.
type Result struct {
	// Amplitudes[k] is the peak amplitude of harmonic k. Index 0 is the DC
	// offset.
	Amplitudes []float64
}

// Analyze transforms one cycle and returns its harmonic amplitudes.
func Analyze[T core.Sample](cycle []T) (Result, error) {
	n := len(cycle)
	if n < 2 || !core.IsPowerOfTwo(n) {
		return Result{}, fmt.Errorf("%w: %d", ErrCycleLength, n)
	}

	in := make([]complex128, n)
	for i, v := range cycle {
		in[i] = complex(float64(v), 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Result{}, fmt.Errorf("harmonics: plan: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("harmonics: forward: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	amps := make([]float64, bins)
	vecmath.Magnitude(amps, re, im)

	inv := 1 / float64(n)
	amps[0] *= inv
	for k := 1; k < bins; k++ {
		if k == n/2 {
			amps[k] *= inv
			continue
		}
		amps[k] *= 2 * inv
	}

	return Result{Amplitudes: amps}, nil
}

// Amplitude returns the amplitude of harmonic k, or 0 when k is out of range.
func (r Result) Amplitude(k int) float64 {
	if k < 0 || k >= len(r.Amplitudes) {
		return 0
	}
	return r.Amplitudes[k]
}

// Highest returns the highest harmonic whose amplitude exceeds
// threshold × the strongest non-DC harmonic. Returns 0 for a cycle with no
// non-DC content.
func (r Result) Highest(threshold float64) int {
	peak := 0.0
	for _, a := range r.Amplitudes[min(1, len(r.Amplitudes)):] {
		peak = max(peak, a)
	}
	if peak <= noiseFloor {
		return 0
	}

	limit := threshold * peak
	for k := len(r.Amplitudes) - 1; k >= 1; k-- {
		if r.Amplitudes[k] > limit {
			return k
		}
	}
	return 0
}

// Present returns the harmonics above threshold × the strongest non-DC
// harmonic, in ascending order.
func (r Result) Present(threshold float64) []int {
	peak := 0.0
	for _, a := range r.Amplitudes[min(1, len(r.Amplitudes)):] {
		peak = max(peak, a)
	}
	if peak <= noiseFloor {
		return nil
	}

	var ks []int
	for k := 1; k < len(r.Amplitudes); k++ {
		if r.Amplitudes[k] > threshold*peak {
			ks = append(ks, k)
		}
	}
	return ks
}
