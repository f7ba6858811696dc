// Package wavio reads and writes PCM WAV files as deinterleaved float64
// channels and converts them between sample rates.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultBitDepth is used by WriteFile.
const DefaultBitDepth = 24

const wavFormatPCM = 1

// ErrFormat is returned for files that are not integer PCM WAV.
var ErrFormat = errors.New("wavio: unsupported wav format")

// Clip is a decoded audio file.
type Clip struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// NewClip allocates a silent clip.
func NewClip(sampleRate, channels, frames int) *Clip {
	c := &Clip{SampleRate: sampleRate, BitDepth: DefaultBitDepth, Channels: make([][]float64, channels)}
	for ch := range c.Channels {
		c.Channels[ch] = make([]float64, frames)
	}
	return c
}

// Frames returns the number of samples per channel.
func (c *Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.Frames()) / float64(c.SampleRate)
}

func validBitDepth(bits int) bool {
	return bits == 16 || bits == 24 || bits == 32
}

// Read decodes a PCM WAV stream.
func Read(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a wav file", ErrFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: audio format %d", ErrFormat, dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	if !validBitDepth(bits) {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrFormat, bits)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode: %w", err)
	}

	numCh := buf.Format.NumChannels
	if numCh <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrFormat, numCh)
	}

	frames := len(buf.Data) / numCh
	clip := NewClip(buf.Format.SampleRate, numCh, frames)
	clip.BitDepth = bits

	scale := 1 / float64(int64(1)<<(bits-1))
	for i := range frames {
		for ch := range numCh {
			clip.Channels[ch][i] = float64(buf.Data[i*numCh+ch]) * scale
		}
	}

	return clip, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clip, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// Write encodes c as PCM WAV with the given bit depth. Samples are clipped
// to [-1, 1].
func Write(w io.WriteSeeker, c *Clip, bitDepth int) error {
	if !validBitDepth(bitDepth) {
		return fmt.Errorf("%w: %d-bit samples", ErrFormat, bitDepth)
	}
	numCh := len(c.Channels)
	if numCh == 0 {
		return fmt.Errorf("%w: no channels", ErrFormat)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("wavio: sample rate must be > 0: %d", c.SampleRate)
	}

	frames := c.Frames()
	full := float64(int64(1)<<(bitDepth-1) - 1)

	data := make([]int, frames*numCh)
	for ch, samples := range c.Channels {
		if len(samples) != frames {
			return fmt.Errorf("wavio: channel %d has %d frames, want %d", ch, len(samples), frames)
		}
		for i, x := range samples {
			data[i*numCh+ch] = int(math.Round(core.Clamp(x, -1, 1) * full))
		}
	}

	enc := wav.NewEncoder(w, c.SampleRate, bitDepth, numCh, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize: %w", err)
	}
	return nil
}

// WriteFile encodes c to path, keeping the clip's bit depth when it is a
// supported PCM depth.
func WriteFile(path string, c *Clip) (err error) {
	bits := c.BitDepth
	if !validBitDepth(bits) {
		bits = DefaultBitDepth
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Write(f, c, bits)
}
