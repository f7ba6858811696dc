// Package modulation provides the modulated-delay effect family: flanger,
// chorus and vibrato.
//
// An Effect couples a wavetable LFO (package wavetable) with a two-channel
// fractional delay line (package delay). For every sample and channel the
// LFO produces a unipolar value that sets the delay offset:
//
//	offset = base + depth * lfo * delta + MinDelayMs
//
// where base is the chorus offset for Chorus and zero otherwise, and delta
// is the maximum excursion of the active Type. Vibrato additionally forces a
// fully wet mix without feedback.
//
// Parameter setters are plain assignments intended for the audio thread;
// they do not validate. Construction options validate their ranges.
package modulation
