// Package playback sends rendered audio to the default output device.
//
// Builds with the headless tag replace the device backend with one that
// reports ErrUnavailable.
package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnavailable is returned when no audio backend is compiled in.
var ErrUnavailable = errors.New("playback: audio output unavailable")

// MaxChannels is the widest layout Play accepts.
const MaxChannels = 2

// Interleave packs deinterleaved channels into little-endian float32
// frames. All channels must have the same length.
func Interleave(channels [][]float64) ([]byte, error) {
	if len(channels) == 0 || len(channels) > MaxChannels {
		return nil, fmt.Errorf("playback: %d channels, want 1..%d", len(channels), MaxChannels)
	}

	frames := len(channels[0])
	for ch, c := range channels {
		if len(c) != frames {
			return nil, fmt.Errorf("playback: channel %d has %d frames, want %d", ch, len(c), frames)
		}
	}

	numCh := len(channels)
	out := make([]byte, frames*numCh*4)
	for i := range frames {
		for ch := range numCh {
			off := (i*numCh + ch) * 4
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(float32(channels[ch][i])))
		}
	}
	return out, nil
}
