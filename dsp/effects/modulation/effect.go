package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/dsp/delay"
	"github.com/cwbudde/algo-modfx/dsp/wavetable"
)

// Type selects the effect flavour.
type Type int

const (
	Flanger Type = iota
	Chorus
	Vibrato
)

// NumTypes is the number of effect types.
const NumTypes = 3

const (
	// MinDelayMs is added to every offset so the delay never reaches zero.
	MinDelayMs = 0.01

	flangerDeltaMs = 7.0
	chorusDeltaMs  = 25.0

	DefaultRateHz         = 0.18
	DefaultDepth          = 0.5
	DefaultDryWet         = 0.5
	DefaultFeedback       = 0.4
	DefaultChorusOffsetMs = 5.0

	MinRateHz         = 0.02
	MaxRateHz         = 5.0
	MinFeedback       = -0.95
	MaxFeedback       = 0.95
	MinChorusOffsetMs = 5.0
	MaxChorusOffsetMs = 35.0
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Flanger:
		return "Flanger"
	case Chorus:
		return "Chorus"
	case Vibrato:
		return "Vibrato"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// DeltaDelayMs returns the maximum modulation excursion in milliseconds.
func (t Type) DeltaDelayMs() float64 {
	if t == Chorus {
		return chorusDeltaMs
	}
	return flangerDeltaMs
}

// UsesChorusOffset reports whether the base chorus offset is added.
func (t Type) UsesChorusOffset() bool { return t == Chorus }

// Option mutates effect construction parameters.
type Option func(*config) error

type config struct {
	rateHz         float64
	depth          float64
	dryWet         float64
	feedback       float64
	chorusOffsetMs float64
	waveform       wavetable.Waveform
	effectType     Type
	quadPhase      bool
	oscOpts        []wavetable.Option
	delayOpts      []delay.Option
}

func defaultConfig() config {
	return config{
		rateHz:         DefaultRateHz,
		depth:          DefaultDepth,
		dryWet:         DefaultDryWet,
		feedback:       DefaultFeedback,
		chorusOffsetMs: DefaultChorusOffsetMs,
		waveform:       wavetable.Sine,
		effectType:     Flanger,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// WithRateHz sets the LFO rate in [MinRateHz, MaxRateHz].
func WithRateHz(rateHz float64) Option {
	return func(cfg *config) error {
		if rateHz < MinRateHz || rateHz > MaxRateHz || !finite(rateHz) {
			return fmt.Errorf("modulation rate must be in [%g, %g]: %f", MinRateHz, MaxRateHz, rateHz)
		}
		cfg.rateHz = rateHz
		return nil
	}
}

// WithDepth sets the modulation depth in [0, 1].
func WithDepth(depth float64) Option {
	return func(cfg *config) error {
		if depth < 0 || depth > 1 || !finite(depth) {
			return fmt.Errorf("modulation depth must be in [0, 1]: %f", depth)
		}
		cfg.depth = depth
		return nil
	}
}

// WithDryWet sets the wet amount in [0, 1].
func WithDryWet(w float64) Option {
	return func(cfg *config) error {
		if w < 0 || w > 1 || !finite(w) {
			return fmt.Errorf("modulation dry/wet must be in [0, 1]: %f", w)
		}
		cfg.dryWet = w
		return nil
	}
}

// WithFeedback sets the feedback gain in [MinFeedback, MaxFeedback].
func WithFeedback(fb float64) Option {
	return func(cfg *config) error {
		if fb < MinFeedback || fb > MaxFeedback || !finite(fb) {
			return fmt.Errorf("modulation feedback must be in [%g, %g]: %f", MinFeedback, MaxFeedback, fb)
		}
		cfg.feedback = fb
		return nil
	}
}

// WithChorusOffsetMs sets the chorus base offset in
// [MinChorusOffsetMs, MaxChorusOffsetMs].
func WithChorusOffsetMs(ms float64) Option {
	return func(cfg *config) error {
		if ms < MinChorusOffsetMs || ms > MaxChorusOffsetMs || !finite(ms) {
			return fmt.Errorf("modulation chorus offset must be in [%g, %g] ms: %f",
				MinChorusOffsetMs, MaxChorusOffsetMs, ms)
		}
		cfg.chorusOffsetMs = ms
		return nil
	}
}

// WithWaveform sets the LFO waveform.
func WithWaveform(w wavetable.Waveform) Option {
	return func(cfg *config) error {
		if w < wavetable.Sine || w > wavetable.Square {
			return fmt.Errorf("modulation waveform out of range: %d", int(w))
		}
		cfg.waveform = w
		return nil
	}
}

// WithType sets the effect type.
func WithType(t Type) Option {
	return func(cfg *config) error {
		if t < Flanger || t > Vibrato {
			return fmt.Errorf("modulation type out of range: %d", int(t))
		}
		cfg.effectType = t
		return nil
	}
}

// WithQuadPhase starts the two channels a quarter LFO period apart.
func WithQuadPhase(on bool) Option {
	return func(cfg *config) error {
		cfg.quadPhase = on
		return nil
	}
}

// WithTableSize sets the LFO table length (power of two).
func WithTableSize(size int) Option {
	return func(cfg *config) error {
		cfg.oscOpts = append(cfg.oscOpts, wavetable.WithTableSize(size))
		return nil
	}
}

// WithHarmonics switches the LFO to additive tables with n harmonics.
func WithHarmonics(n int) Option {
	return func(cfg *config) error {
		cfg.oscOpts = append(cfg.oscOpts, wavetable.WithHarmonics(n))
		return nil
	}
}

// WithTables makes the LFO read from a shared table set.
func WithTables(t *wavetable.Tables) Option {
	return func(cfg *config) error {
		cfg.oscOpts = append(cfg.oscOpts, wavetable.WithTables(t))
		return nil
	}
}

// WithMixer sets the block mixer of the delay line.
func WithMixer(m delay.Mixer) Option {
	return func(cfg *config) error {
		cfg.delayOpts = append(cfg.delayOpts, delay.WithMixer(m))
		return nil
	}
}

// Effect is a flanger, chorus or vibrato built from a wavetable LFO and a
// fractional delay line. It processes two channels; each must be driven
// exactly once per sample.
type Effect struct {
	lfo  *wavetable.Oscillator
	line *delay.Fractional

	effectType    Type
	deltaDelayMs  float64
	chorusEnabled bool

	rateHz         float64
	depth          float64
	dryWet         float64
	feedback       float64
	chorusOffsetMs float64
	quadPhase      bool

	offsetMs [delay.Channels]float64

	wet []float64
	buf []float64
}

// NewEffect creates an effect for cfg with practical defaults and optional
// overrides.
func NewEffect(cfg core.ProcessorConfig, opts ...Option) (*Effect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("modulation: %w", err)
	}

	ec := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&ec); err != nil {
			return nil, err
		}
	}

	lfo, err := wavetable.NewOscillator(cfg, ec.rateHz, ec.oscOpts...)
	if err != nil {
		return nil, fmt.Errorf("modulation: %w", err)
	}

	line, err := delay.NewFractional(cfg, ec.delayOpts...)
	if err != nil {
		return nil, fmt.Errorf("modulation: %w", err)
	}

	e := &Effect{
		lfo:            lfo,
		line:           line,
		rateHz:         ec.rateHz,
		depth:          ec.depth,
		dryWet:         ec.dryWet,
		feedback:       ec.feedback,
		chorusOffsetMs: ec.chorusOffsetMs,
		wet:            make([]float64, cfg.BlockSize),
		buf:            make([]float64, cfg.BlockSize),
	}

	e.lfo.SetWaveform(ec.waveform)
	e.SetQuadPhase(ec.quadPhase)
	e.SetType(ec.effectType)

	return e, nil
}

// SetRateHz sets the LFO rate. Phase is preserved.
func (e *Effect) SetRateHz(rateHz float64) {
	e.rateHz = rateHz
	e.lfo.SetFrequency(rateHz)
}

// SetDepth sets the modulation depth.
func (e *Effect) SetDepth(depth float64) { e.depth = depth }

// SetDryWet sets the wet amount. Vibrato keeps its forced full-wet mix;
// the value is applied when switching to another type.
func (e *Effect) SetDryWet(w float64) {
	e.dryWet = w
	if e.effectType != Vibrato {
		e.line.SetDryWet(w)
	}
}

// SetFeedback sets the feedback gain. Vibrato keeps zero feedback; the
// value is applied when switching to another type.
func (e *Effect) SetFeedback(fb float64) {
	e.feedback = fb
	if e.effectType != Vibrato {
		e.line.SetFeedback(fb)
	}
}

// SetChorusOffsetMs sets the base offset used by Chorus.
func (e *Effect) SetChorusOffsetMs(ms float64) { e.chorusOffsetMs = ms }

// SetWaveform selects the LFO waveform. Out-of-range values select sine.
func (e *Effect) SetWaveform(w wavetable.Waveform) { e.lfo.SetWaveform(w) }

// SetType switches the effect type immediately. Unknown values select
// Flanger.
func (e *Effect) SetType(t Type) {
	if t < Flanger || t > Vibrato {
		t = Flanger
	}

	e.effectType = t
	e.deltaDelayMs = t.DeltaDelayMs()
	e.chorusEnabled = t.UsesChorusOffset()

	if t == Vibrato {
		e.line.SetDryWet(1)
		e.line.SetFeedback(0)
		return
	}

	e.line.SetDryWet(e.dryWet)
	e.line.SetFeedback(e.feedback)
}

// SetQuadPhase places the second channel's LFO a quarter period ahead of
// the first (on) or in unison with it (off).
func (e *Effect) SetQuadPhase(on bool) {
	e.quadPhase = on
	if on {
		e.lfo.SetQuadPhase()
		return
	}
	e.lfo.ResetPhase()
}

// InvertLFO toggles the LFO polarity.
func (e *Effect) InvertLFO() { e.lfo.InvertPhase() }

// modulate advances the LFO for ch and moves the delay read position.
func (e *Effect) modulate(ch int) {
	lfo := float64(e.lfo.GenerateUnipolar(ch))

	base := 0.0
	if e.chorusEnabled {
		base = e.chorusOffsetMs
	}

	offset := base + e.depth*lfo*e.deltaDelayMs + MinDelayMs
	e.offsetMs[ch] = offset
	e.line.SetOffset(offset, ch)
}

// ProcessSample processes one sample of channel ch.
func (e *Effect) ProcessSample(x float64, ch int) float64 {
	e.modulate(ch)
	return e.line.ProcessSample(x, ch)
}

// Update processes the sample behind p in place.
func (e *Effect) Update(p *float64, ch int) {
	*p = e.ProcessSample(*p, ch)
}

// ProcessInPlace processes a block of channel ch. The offset is updated for
// every sample; mixing runs block-wise through the delay line's mixer.
func (e *Effect) ProcessInPlace(buf []float64, ch int) {
	for len(buf) > 0 {
		n := min(len(buf), len(e.wet))
		block := buf[:n]
		wet := e.wet[:n]
		for i, x := range block {
			e.modulate(ch)
			wet[i] = e.line.Advance(x, ch)
		}
		e.line.Mix(block, block, wet)
		buf = buf[n:]
	}
}

// ProcessBlock32 processes a float32 block of channel ch in place.
func (e *Effect) ProcessBlock32(buf []float32, ch int) {
	for len(buf) > 0 {
		n := min(len(buf), len(e.buf))
		scratch := e.buf[:n]
		core.Convert(scratch, buf[:n])
		e.ProcessInPlace(scratch, ch)
		core.Convert(buf[:n], scratch)
		buf = buf[n:]
	}
}

// Reset clears the delay buffers and rewinds the LFO. Parameters are kept.
func (e *Effect) Reset() {
	e.lfo.Reset()
	e.SetQuadPhase(e.quadPhase)
	e.line.Reset()
	e.offsetMs = [delay.Channels]float64{}
}

// Flush zero-fills the delay buffers without touching LFO or positions.
func (e *Effect) Flush() { e.line.Flush() }

// Type returns the active effect type.
func (e *Effect) Type() Type { return e.effectType }

// DeltaDelayMs returns the active maximum excursion in milliseconds.
func (e *Effect) DeltaDelayMs() float64 { return e.deltaDelayMs }

// ChorusOffsetEnabled reports whether the chorus offset is added.
func (e *Effect) ChorusOffsetEnabled() bool { return e.chorusEnabled }

// RateHz returns the LFO rate.
func (e *Effect) RateHz() float64 { return e.rateHz }

// Depth returns the modulation depth.
func (e *Effect) Depth() float64 { return e.depth }

// DryWet returns the stored wet amount (not the forced vibrato mix).
func (e *Effect) DryWet() float64 { return e.dryWet }

// Feedback returns the stored feedback gain.
func (e *Effect) Feedback() float64 { return e.feedback }

// ChorusOffsetMs returns the chorus base offset.
func (e *Effect) ChorusOffsetMs() float64 { return e.chorusOffsetMs }

// Waveform returns the active LFO waveform.
func (e *Effect) Waveform() wavetable.Waveform { return e.lfo.Waveform() }

// QuadPhase reports whether the channels run in quadrature.
func (e *Effect) QuadPhase() bool { return e.quadPhase }

// LFOInverted reports whether the LFO polarity is inverted.
func (e *Effect) LFOInverted() bool { return e.lfo.Inverted() }

// Offset returns the last delay offset in milliseconds fed to channel ch.
func (e *Effect) Offset(ch int) float64 { return e.offsetMs[ch] }

// Line returns the underlying delay line.
func (e *Effect) Line() *delay.Fractional { return e.line }
