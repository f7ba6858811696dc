package wavio

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"
)

const (
	maxRatio = 16.0
	minRatio = 1.0 / 16
)

// Resample returns c converted to sampleRate. A clip already at that rate
// is returned unchanged.
func Resample(c *Clip, sampleRate int) (*Clip, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavio: sample rate must be > 0: %d", sampleRate)
	}
	if c.SampleRate == sampleRate {
		return c, nil
	}

	ratio := float64(sampleRate) / float64(c.SampleRate)
	if ratio < minRatio || ratio > maxRatio || !gosamplerate.IsValidRatio(ratio) {
		return nil, fmt.Errorf("wavio: resample ratio out of range: %d -> %d Hz", c.SampleRate, sampleRate)
	}

	numCh := len(c.Channels)
	frames := c.Frames()
	in := make([]float32, frames*numCh)
	for ch, samples := range c.Channels {
		for i, x := range samples {
			in[i*numCh+ch] = float32(x)
		}
	}

	out, err := gosamplerate.Simple(in, ratio, numCh, gosamplerate.SRC_SINC_FASTEST)
	if err != nil {
		return nil, fmt.Errorf("wavio: resample: %w", err)
	}

	outFrames := len(out) / numCh
	res := NewClip(sampleRate, numCh, outFrames)
	res.BitDepth = c.BitDepth
	for i := range outFrames {
		for ch := range numCh {
			res.Channels[ch][i] = float64(out[i*numCh+ch])
		}
	}

	return res, nil
}
