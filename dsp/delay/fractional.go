package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modfx/dsp/buffer"
	"github.com/cwbudde/algo-modfx/dsp/core"
)

// Channels is the number of independent delay channels.
const Channels = 2

// DefaultMaxDelaySeconds is the default buffer length in seconds.
const DefaultMaxDelaySeconds = 2.0

// Option configures a Fractional delay line.
type Option func(*lineConfig) error

type lineConfig struct {
	maxDelaySeconds float64
	mixer           Mixer
}

// WithMaxDelaySeconds sets the minimum buffer length in seconds. The actual
// length is rounded up to a power of two samples.
func WithMaxDelaySeconds(seconds float64) Option {
	return func(cfg *lineConfig) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("delay max seconds must be > 0 and finite: %f", seconds)
		}
		cfg.maxDelaySeconds = seconds
		return nil
	}
}

// WithMixer sets the block mixer used by ProcessInPlace and Mix.
func WithMixer(m Mixer) Option {
	return func(cfg *lineConfig) error {
		if m == nil {
			return fmt.Errorf("delay mixer must not be nil")
		}
		cfg.mixer = m
		return nil
	}
}

// Fractional is a two-channel delay line with linearly interpolated reads.
//
// The effective delay of a channel is delayInt + frac samples, where the
// interpolation runs from the read position towards the older neighbour.
// When read and write positions coincide the delayed value is the input
// itself.
type Fractional struct {
	sampleRate float64

	buf   [Channels]*buffer.Ring[float64]
	write [Channels]int
	read  [Channels]int

	delayInt [Channels]int
	frac     [Channels]float64

	wet, dry, feedback float64
	extFeedback        float64

	mixer   Mixer
	scratch []float64
}

// NewFractional creates a delay line for cfg. Both buffers start zeroed
// with wet, dry and feedback at 0.
func NewFractional(cfg core.ProcessorConfig, opts ...Option) (*Fractional, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	lc := lineConfig{maxDelaySeconds: DefaultMaxDelaySeconds}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&lc); err != nil {
			return nil, err
		}
	}
	if lc.mixer == nil {
		lc.mixer = DefaultMixer()
	}

	capacity := int(math.Ceil(lc.maxDelaySeconds * cfg.SampleRate))

	d := &Fractional{
		sampleRate: cfg.SampleRate,
		mixer:      lc.mixer,
		scratch:    make([]float64, cfg.BlockSize),
	}
	for ch := range d.buf {
		ring, err := buffer.NewRing[float64](capacity)
		if err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}
		d.buf[ch] = ring
	}

	return d, nil
}

// Len returns the per-channel buffer length in samples.
func (d *Fractional) Len() int { return d.buf[0].Len() }

// SetOffset sets the delay of channel ch in milliseconds and moves its read
// position to write - floor(samples). Any value is accepted; the read
// position always stays inside the buffer.
func (d *Fractional) SetOffset(ms float64, ch int) {
	samples := d.sampleRate * ms / 1000
	whole := math.Trunc(samples)

	d.delayInt[ch] = int(whole)
	d.frac[ch] = samples - whole
	d.reposition(ch)
}

// Offset returns the current delay of channel ch in samples.
func (d *Fractional) Offset(ch int) float64 {
	return float64(d.delayInt[ch]) + d.frac[ch]
}

func (d *Fractional) reposition(ch int) {
	d.read[ch] = d.buf[ch].Wrap(d.write[ch] - d.delayInt[ch])
}

// delayed returns the interpolated delayed value for channel ch.
func (d *Fractional) delayed(xn float64, ch int) float64 {
	r := d.read[ch]
	if r == d.write[ch] {
		return xn
	}

	b := d.buf[ch]
	f := d.frac[ch]
	return b.At(r)*(1-f) + b.At(r-1)*f
}

func (d *Fractional) advance(ch int) {
	d.write[ch] = d.buf[ch].Wrap(d.write[ch] + 1)
}

// Advance computes the delayed value for xn, writes xn plus the feedback
// term and advances the write position of channel ch. It returns the
// delayed (wet) value without mixing.
func (d *Fractional) Advance(xn float64, ch int) float64 {
	yn := d.delayed(xn, ch)
	d.buf[ch].Set(d.write[ch], xn+yn*d.feedback)
	d.advance(ch)
	return yn
}

// ProcessSample runs one sample of channel ch and returns dry*xn + wet*yn.
func (d *Fractional) ProcessSample(xn float64, ch int) float64 {
	yn := d.Advance(xn, ch)
	return d.dry*xn + d.wet*yn
}

// ProcessSampleCrossFeedback is ProcessSample with the feedback sum written
// into the other channel's buffer at that channel's write position.
func (d *Fractional) ProcessSampleCrossFeedback(xn float64, ch int) float64 {
	yn := d.delayed(xn, ch)
	other := ch ^ 1
	d.buf[other].Set(d.write[other], xn+yn*d.feedback)
	d.advance(ch)
	return d.dry*xn + d.wet*yn
}

// ProcessSampleExternalFeedback is ProcessSample with the feedback term
// replaced by the value set with SetExternalFeedback.
func (d *Fractional) ProcessSampleExternalFeedback(xn float64, ch int) float64 {
	yn := d.delayed(xn, ch)
	d.buf[ch].Set(d.write[ch], xn+d.extFeedback)
	d.advance(ch)
	return d.dry*xn + d.wet*yn
}

// ProcessInPlace runs a block of channel ch at the current offset. The
// read position is kept at the configured distance from the write position
// for every sample.
func (d *Fractional) ProcessInPlace(buf []float64, ch int) {
	for len(buf) > 0 {
		n := min(len(buf), len(d.scratch))
		wet := d.scratch[:n]
		for i, x := range buf[:n] {
			d.reposition(ch)
			wet[i] = d.Advance(x, ch)
		}
		d.Mix(buf[:n], buf[:n], wet)
		buf = buf[n:]
	}
}

// Mix blends dry and wet into dst with the current dry/wet gains using the
// configured mixer. wet is overwritten.
func (d *Fractional) Mix(dst, dry, wet []float64) {
	d.mixer.Mix(dst, dry, wet, d.dry, d.wet)
}

// DelayedSample returns the raw buffer value at the read position of
// channel ch.
func (d *Fractional) DelayedSample(ch int) float64 {
	return d.buf[ch].At(d.read[ch])
}

// SetDryWet sets wet = w and dry = 1 - w.
func (d *Fractional) SetDryWet(w float64) {
	d.wet = w
	d.dry = 1 - w
}

// SetFeedback sets the feedback gain.
func (d *Fractional) SetFeedback(fb float64) { d.feedback = fb }

// SetExternalFeedback sets the value used by ProcessSampleExternalFeedback.
func (d *Fractional) SetExternalFeedback(v float64) { d.extFeedback = v }

// Wet returns the wet gain.
func (d *Fractional) Wet() float64 { return d.wet }

// Dry returns the dry gain.
func (d *Fractional) Dry() float64 { return d.dry }

// Feedback returns the feedback gain.
func (d *Fractional) Feedback() float64 { return d.feedback }

// Mixer returns the block mixer.
func (d *Fractional) Mixer() Mixer { return d.mixer }

// Flush zero-fills both channel buffers. Positions and gains are kept.
func (d *Fractional) Flush() {
	for _, b := range d.buf {
		b.Reset()
	}
}

// Reset flushes the buffers and rewinds every position and offset.
func (d *Fractional) Reset() {
	d.Flush()
	d.write = [Channels]int{}
	d.read = [Channels]int{}
	d.delayInt = [Channels]int{}
	d.frac = [Channels]float64{}
	d.extFeedback = 0
}
