package level

import (
	"math"

	"github.com/cwbudde/algo-modfx/dsp/core"
)

// Stats holds time-domain level statistics.
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMSDB         float64
	Max           float64
	MaxPos        int
	Min           float64
	MinPos        int
	Peak          float64 // max(|max|, |min|)
	PeakDB        float64
	CrestFactor   float64 // peak / RMS (linear)
	ZeroCrossings int
}

// ampToDB converts an amplitude to decibels: 20 * log10(|value|).
// Returns -Inf for zero.
func ampToDB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * mathLog10(a)
}

// Calculate computes all statistics in a single pass.
func Calculate[T core.Sample](signal []T) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{
			RMSDB:  math.Inf(-1),
			PeakDB: math.Inf(-1),
		}
	}

	var (
		sum, sumSq    float64
		maxVal        = float64(signal[0])
		maxPos        int
		minVal        = float64(signal[0])
		minPos        int
		zeroCrossings int
	)

	for i, s := range signal {
		x := float64(s)
		sum += x
		sumSq += x * x

		if x > maxVal {
			maxVal = x
			maxPos = i
		}

		if x < minVal {
			minVal = x
			minPos = i
		}

		if i > 0 && float64(signal[i-1])*x < 0 {
			zeroCrossings++
		}
	}

	nf := float64(n)
	rms := mathSqrt(sumSq / nf)
	peak := math.Max(math.Abs(maxVal), math.Abs(minVal))

	var crest float64
	if rms > 0 {
		crest = peak / rms
	}

	return Stats{
		Length:        n,
		DC:            sum / nf,
		RMS:           rms,
		RMSDB:         ampToDB(rms),
		Max:           maxVal,
		MaxPos:        maxPos,
		Min:           minVal,
		MinPos:        minPos,
		Peak:          peak,
		PeakDB:        ampToDB(peak),
		CrestFactor:   crest,
		ZeroCrossings: zeroCrossings,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS[T core.Sample](signal []T) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, s := range signal {
		x := float64(s)
		sumSq += x * x
	}

	return mathSqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak[T core.Sample](signal []T) float64 {
	var peak float64
	for _, s := range signal {
		peak = math.Max(peak, math.Abs(float64(s)))
	}

	return peak
}

// ZeroCrossings returns the number of sign changes in the signal.
// A crossing is counted when consecutive samples have opposite signs.
func ZeroCrossings[T core.Sample](signal []T) int {
	var count int
	for i := 1; i < len(signal); i++ {
		if float64(signal[i-1])*float64(signal[i]) < 0 {
			count++
		}
	}

	return count
}

// RisingCrossings returns the indices i at which signal[i-1] < 0 and
// signal[i] >= 0.
func RisingCrossings[T core.Sample](signal []T) []int {
	var idx []int
	for i := 1; i < len(signal); i++ {
		if signal[i-1] < 0 && signal[i] >= 0 {
			idx = append(idx, i)
		}
	}

	return idx
}

// MeanPeriod returns the average distance in samples between rising zero
// crossings, refined by linear interpolation of each crossing position.
// Returns 0 when fewer than two crossings are present.
func MeanPeriod[T core.Sample](signal []T) float64 {
	idx := RisingCrossings(signal)
	if len(idx) < 2 {
		return 0
	}

	first := crossingPosition(signal, idx[0])
	last := crossingPosition(signal, idx[len(idx)-1])

	return (last - first) / float64(len(idx)-1)
}

// crossingPosition interpolates the fractional zero position between i-1 and i.
func crossingPosition[T core.Sample](signal []T, i int) float64 {
	a := float64(signal[i-1])
	b := float64(signal[i])
	if b == a {
		return float64(i)
	}

	return float64(i-1) + a/(a-b)
}
