package host

import (
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/dsp/delay"
	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
)

// MaxChannels is the widest bus a Processor accepts.
const MaxChannels = delay.Channels

var (
	// ErrNotActive is returned by Process calls before SetActive(true).
	ErrNotActive = errors.New("host: processor not active")
	// ErrBusLayout is returned for mismatched or too wide channel sets.
	ErrBusLayout = errors.New("host: unsupported bus layout")
)

// Processor drives one modulation effect on behalf of a host.
//
// All methods must be called from the same goroutine; parameter changes
// and processing are serialized by the caller.
type Processor struct {
	setup  core.ProcessorConfig
	values Values
	opts   []modulation.Option

	fx *modulation.Effect
}

// NewProcessor returns an inactive processor with default parameter values.
// opts are passed to the effect on every activation.
func NewProcessor(opts ...modulation.Option) *Processor {
	return &Processor{
		setup:  core.DefaultProcessorConfig(),
		values: DefaultValues(),
		opts:   opts,
	}
}

// SetupProcessing stores the sample rate and maximum block size. It takes
// effect on the next activation.
func (p *Processor) SetupProcessing(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("host: setup: %w", err)
	}
	p.setup = cfg
	return nil
}

// Setup returns the stored processing setup.
func (p *Processor) Setup() core.ProcessorConfig { return p.setup }

// SetActive allocates the effect (true) or releases it (false).
func (p *Processor) SetActive(active bool) error {
	if !active {
		p.fx = nil
		return nil
	}

	fx, err := modulation.NewEffect(p.setup, p.opts...)
	if err != nil {
		return fmt.Errorf("host: activate: %w", err)
	}
	applyValues(fx, p.values)
	p.fx = fx

	return nil
}

// Active reports whether the effect is allocated.
func (p *Processor) Active() bool { return p.fx != nil }

// Effect returns the active effect, or nil.
func (p *Processor) Effect() *modulation.Effect { return p.fx }

// Values returns the current plain parameter values.
func (p *Processor) Values() Values { return p.values }

func applyValues(fx *modulation.Effect, v Values) {
	fx.SetDryWet(v.DryWet)
	fx.SetRateHz(v.RateHz)
	fx.SetDepth(v.Depth)
	fx.SetWaveform(v.Waveform)
	fx.SetFeedback(v.Feedback)
	fx.SetChorusOffsetMs(v.ChorusOffsetMs)
	fx.SetType(v.EffectType)
}

// SetParamNormalized applies a normalized host value to parameter id.
func (p *Processor) SetParamNormalized(id ParamID, normalized float64) error {
	d, err := Lookup(id)
	if err != nil {
		return err
	}

	plain := d.Plain(normalized)
	if err := p.values.setPlain(id, plain); err != nil {
		return err
	}

	if p.fx != nil {
		p.applyParam(id)
	}
	return nil
}

// ParamNormalized returns the normalized value of parameter id.
func (p *Processor) ParamNormalized(id ParamID) (float64, error) {
	d, err := Lookup(id)
	if err != nil {
		return 0, err
	}
	plain, err := p.values.plain(id)
	if err != nil {
		return 0, err
	}
	return d.Normalized(plain), nil
}

func (p *Processor) applyParam(id ParamID) {
	v := p.values
	switch id {
	case ParamDryWet:
		p.fx.SetDryWet(v.DryWet)
	case ParamRate:
		p.fx.SetRateHz(v.RateHz)
	case ParamDepth:
		p.fx.SetDepth(v.Depth)
	case ParamWaveform:
		p.fx.SetWaveform(v.Waveform)
	case ParamFeedback:
		p.fx.SetFeedback(v.Feedback)
	case ParamChorusOffset:
		p.fx.SetChorusOffsetMs(v.ChorusOffsetMs)
	case ParamEffectType:
		p.fx.SetType(v.EffectType)
	}
}

func checkBus(inCh, outCh int) error {
	if inCh != outCh || outCh > MaxChannels {
		return fmt.Errorf("%w: %d in, %d out", ErrBusLayout, inCh, outCh)
	}
	return nil
}

// Process64 processes one block. in and out hold one slice per channel and
// may alias. With bypass on the input is copied unchanged.
func (p *Processor) Process64(in, out [][]float64) error {
	if p.fx == nil {
		return ErrNotActive
	}
	if err := checkBus(len(in), len(out)); err != nil {
		return err
	}

	for ch := range out {
		n := copy(out[ch], in[ch])
		if !p.values.Bypass {
			p.fx.ProcessInPlace(out[ch][:n], ch)
		}
	}
	return nil
}

// Process32 is Process64 for single-precision buses.
func (p *Processor) Process32(in, out [][]float32) error {
	if p.fx == nil {
		return ErrNotActive
	}
	if err := checkBus(len(in), len(out)); err != nil {
		return err
	}

	for ch := range out {
		n := copy(out[ch], in[ch])
		if !p.values.Bypass {
			p.fx.ProcessBlock32(out[ch][:n], ch)
		}
	}
	return nil
}

// SetValues replaces every parameter value and applies them to the active
// effect.
func (p *Processor) SetValues(v Values) { p.commit(v) }

// State encodes the current parameter values.
func (p *Processor) State() ([]byte, error) {
	return p.values.MarshalBinary()
}

// SetState decodes data and applies it. On error nothing changes.
func (p *Processor) SetState(data []byte) error {
	var v Values
	if err := v.UnmarshalBinary(data); err != nil {
		return err
	}
	p.commit(v)
	return nil
}

// WriteState writes the current parameter values to w.
func (p *Processor) WriteState(w io.Writer) error {
	return WriteState(w, p.values)
}

// ReadState reads parameter values from r and applies them. On error
// nothing changes.
func (p *Processor) ReadState(r io.Reader) error {
	v, err := ReadState(r)
	if err != nil {
		return err
	}
	p.commit(v)
	return nil
}

func (p *Processor) commit(v Values) {
	p.values = v
	if p.fx != nil {
		applyValues(p.fx, v)
	}
}
