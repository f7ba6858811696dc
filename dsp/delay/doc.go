// Package delay implements a two-channel fractional delay line with
// feedback, used as the modulated element of flanger, chorus and vibrato
// effects.
//
// Each channel owns a power-of-two ring buffer sized for a maximum delay
// (two seconds by default). The read position is set explicitly with
// SetOffset, which may be called every sample; processing writes one
// sample and advances only the write position.
package delay
