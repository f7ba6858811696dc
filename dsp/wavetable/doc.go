// Package wavetable provides precomputed single-cycle waveform tables and a
// wavetable oscillator for low-frequency modulation.
//
// Four tables (sine, sawtooth, triangle, square) are built once per table set,
// either from exact closed-form shapes or by additive synthesis of a fixed
// number of harmonics. Table length is always a power of two so read cursors
// wrap with a bitmask.
//
// The Oscillator reads the active table at an arbitrary frequency with linear
// interpolation. It keeps two independent cursors, one per channel, which can
// run in unison or a quarter period apart (quadrature) for stereo width.
//
// Generate, GenerateUnipolar and all setters are allocation free and intended
// to be called from a single audio thread.
package wavetable
