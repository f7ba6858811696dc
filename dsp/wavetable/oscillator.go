package wavetable

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modfx/dsp/core"
)

// Channels is the number of independent read cursors per oscillator.
const Channels = 2

// Option configures an Oscillator.
type Option func(*oscillatorConfig) error

type oscillatorConfig struct {
	size      int
	harmonics int
	tables    *Tables
}

// WithTableSize sets the table length used when the oscillator builds its
// own tables. Must be a power of two >= 4.
func WithTableSize(size int) Option {
	return func(cfg *oscillatorConfig) error {
		if err := validateSize(size); err != nil {
			return err
		}
		cfg.size = size
		return nil
	}
}

// WithHarmonics selects additive tables with the given harmonic count.
// Zero selects DefaultHarmonics.
func WithHarmonics(harmonics int) Option {
	return func(cfg *oscillatorConfig) error {
		if harmonics < 0 {
			return fmt.Errorf("wavetable harmonics must be >= 0: %d", harmonics)
		}
		if harmonics == 0 {
			harmonics = DefaultHarmonics
		}
		cfg.harmonics = harmonics
		return nil
	}
}

// WithTables makes the oscillator read from an existing table set instead of
// building its own. Size and harmonic options are ignored.
func WithTables(t *Tables) Option {
	return func(cfg *oscillatorConfig) error {
		if t == nil {
			return fmt.Errorf("wavetable tables must not be nil")
		}
		cfg.tables = t
		return nil
	}
}

// Oscillator is a two-cursor wavetable LFO. Each cursor has an integer table
// index and a fractional accumulator in [0,1); both advance by the same
// per-sample increment derived from frequency and sample rate.
type Oscillator struct {
	tables     *Tables
	waveform   Waveform
	table      []float32
	mask       int
	sampleRate float64
	freq       float64

	incInt  int
	incFrac float32

	index [Channels]int
	frac  [Channels]float32

	polarity float32
}

// NewOscillator creates an oscillator running at freq Hz on the sine table.
func NewOscillator(cfg core.ProcessorConfig, freq float64, opts ...Option) (*Oscillator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("wavetable oscillator: %w", err)
	}
	if math.IsNaN(freq) || math.IsInf(freq, 0) {
		return nil, fmt.Errorf("wavetable oscillator frequency must be finite: %f", freq)
	}

	oc := oscillatorConfig{size: DefaultSize}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&oc); err != nil {
			return nil, err
		}
	}

	tables := oc.tables
	if tables == nil {
		var err error
		if oc.harmonics > 0 {
			tables, err = NewAdditiveTables(oc.size, oc.harmonics)
		} else {
			tables, err = NewTables(oc.size)
		}
		if err != nil {
			return nil, err
		}
	}

	o := &Oscillator{
		tables:     tables,
		mask:       tables.Size() - 1,
		sampleRate: cfg.SampleRate,
		polarity:   1,
	}
	o.SetWaveform(Sine)
	o.SetFrequency(freq)

	return o, nil
}

// SetFrequency recomputes the per-sample increment. Cursor positions are
// left untouched, so frequency changes are phase continuous.
func (o *Oscillator) SetFrequency(freq float64) {
	if math.IsNaN(freq) || math.IsInf(freq, 0) {
		return
	}

	o.freq = freq
	inc := float64(len(o.table)) * freq / o.sampleRate
	whole := math.Floor(inc)
	o.incInt = int(whole)
	o.incFrac = float32(inc - whole)
}

// SetWaveform selects the table to read. Out-of-range values select Sine.
func (o *Oscillator) SetWaveform(w Waveform) {
	if w < Sine || w > Square {
		w = Sine
	}
	o.waveform = w
	o.table = o.tables.Table(w)
}

// Generate returns the interpolated bipolar value for channel ch at the
// cursor's current position and then advances that cursor.
func (o *Oscillator) Generate(ch int) float32 {
	i := o.index[ch]
	frac := o.frac[ch]

	a := o.table[i]
	y := a + (o.table[(i+1)&o.mask]-a)*frac

	acc := frac + o.incFrac
	carry := float32(math.Floor(float64(acc)))
	o.frac[ch] = acc - carry
	o.index[ch] = (i + o.incInt + int(carry)) & o.mask

	return y * o.polarity
}

// GenerateUnipolar maps Generate from [-1,1] into [0,1].
func (o *Oscillator) GenerateUnipolar(ch int) float32 {
	return o.Generate(ch)*0.5 + 0.5
}

// SetQuadPhase places channel 1 a quarter table ahead of channel 0.
func (o *Oscillator) SetQuadPhase() {
	o.index[1] = (o.index[0] + len(o.table)/4) & o.mask
	o.frac[1] = o.frac[0]
}

// ResetPhase aligns channel 1 with channel 0.
func (o *Oscillator) ResetPhase() {
	o.index[1] = o.index[0]
	o.frac[1] = o.frac[0]
}

// InvertPhase negates all subsequent output. Calling it twice restores the
// original polarity.
func (o *Oscillator) InvertPhase() {
	o.polarity = -o.polarity
}

// Inverted reports whether output is currently negated.
func (o *Oscillator) Inverted() bool { return o.polarity < 0 }

// Reset rewinds both cursors to the start of the table. Frequency,
// waveform and polarity are kept.
func (o *Oscillator) Reset() {
	o.index = [Channels]int{}
	o.frac = [Channels]float32{}
}

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.freq }

// Waveform returns the active waveform.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// TableSize returns the table length.
func (o *Oscillator) TableSize() int { return len(o.table) }

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Position returns the integer index and fractional accumulator of the
// cursor for channel ch.
func (o *Oscillator) Position(ch int) (int, float32) {
	return o.index[ch], o.frac[ch]
}
