package host

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
	"github.com/cwbudde/algo-modfx/dsp/wavetable"
)

// ParamID identifies a host-visible parameter.
type ParamID uint32

const (
	ParamDryWet       ParamID = 101
	ParamRate         ParamID = 102
	ParamDepth        ParamID = 103
	ParamWaveform     ParamID = 104
	ParamFeedback     ParamID = 105
	ParamChorusOffset ParamID = 106
	ParamEffectType   ParamID = 107
	ParamBypass       ParamID = 108
)

// ErrUnknownParam is returned for parameter IDs outside the descriptor set.
var ErrUnknownParam = errors.New("host: unknown parameter")

// Kind is the value mapping of a parameter.
type Kind int

const (
	// KindRange maps [0,1] linearly onto [Min, Max].
	KindRange Kind = iota
	// KindList maps [0,1] onto one of len(Choices) entries.
	KindList
	// KindToggle is off at or below 0.5 and on above.
	KindToggle
)

// Descriptor describes one parameter.
type Descriptor struct {
	ID        ParamID
	Name      string
	Unit      string
	Kind      Kind
	Min       float64
	Max       float64
	Default   float64 // plain value
	Precision int
	Choices   []string
}

var descriptors = []Descriptor{
	{
		ID: ParamDryWet, Name: "Dry/Wet", Kind: KindRange,
		Min: 0, Max: 1, Default: modulation.DefaultDryWet, Precision: 1,
	},
	{
		ID: ParamRate, Name: "Modulation Rate", Unit: "Hz", Kind: KindRange,
		Min: modulation.MinRateHz, Max: modulation.MaxRateHz, Default: modulation.DefaultRateHz, Precision: 2,
	},
	{
		ID: ParamDepth, Name: "Modulation Depth", Kind: KindRange,
		Min: 0, Max: 1, Default: modulation.DefaultDepth, Precision: 2,
	},
	{
		ID: ParamWaveform, Name: "Modulation Waveform", Kind: KindList,
		Max: wavetable.NumWaveforms - 1,
		Choices: []string{
			wavetable.Sine.String(), wavetable.Saw.String(),
			wavetable.Triangle.String(), wavetable.Square.String(),
		},
	},
	{
		ID: ParamFeedback, Name: "Feedback", Kind: KindRange,
		Min: modulation.MinFeedback, Max: modulation.MaxFeedback, Default: modulation.DefaultFeedback, Precision: 2,
	},
	{
		ID: ParamChorusOffset, Name: "Chorus Offset", Unit: "ms", Kind: KindRange,
		Min: modulation.MinChorusOffsetMs, Max: modulation.MaxChorusOffsetMs,
		Default: modulation.DefaultChorusOffsetMs, Precision: 1,
	},
	{
		ID: ParamEffectType, Name: "Effect Type", Kind: KindList,
		Max: modulation.NumTypes - 1,
		Choices: []string{
			modulation.Flanger.String(), modulation.Chorus.String(), modulation.Vibrato.String(),
		},
	},
	{
		ID: ParamBypass, Name: "Bypass", Kind: KindToggle, Max: 1,
	},
}

// Descriptors returns all parameters in host order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Lookup returns the descriptor for id.
func Lookup(id ParamID) (Descriptor, error) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %d", ErrUnknownParam, id)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Plain maps a normalized value to the plain value. Input is clamped to
// [0,1]. List parameters return the choice index.
func (d Descriptor) Plain(normalized float64) float64 {
	v := clamp01(normalized)

	switch d.Kind {
	case KindList:
		n := len(d.Choices)
		return float64(min(int(float64(n)*v), n-1))
	case KindToggle:
		if v > 0.5 {
			return 1
		}
		return 0
	default:
		return d.Min + v*(d.Max-d.Min)
	}
}

// Normalized maps a plain value to [0,1].
func (d Descriptor) Normalized(plain float64) float64 {
	switch d.Kind {
	case KindList:
		n := len(d.Choices)
		if n <= 1 {
			return 0
		}
		return clamp01(plain / float64(n-1))
	case KindToggle:
		if plain > 0.5 {
			return 1
		}
		return 0
	default:
		if d.Max <= d.Min {
			return 0
		}
		return clamp01((plain - d.Min) / (d.Max - d.Min))
	}
}

// Format renders a plain value for display.
func (d Descriptor) Format(plain float64) string {
	switch d.Kind {
	case KindList:
		i := int(plain)
		if i < 0 || i >= len(d.Choices) {
			return fmt.Sprintf("#%d", i)
		}
		return d.Choices[i]
	case KindToggle:
		if plain > 0.5 {
			return "On"
		}
		return "Off"
	default:
		s := fmt.Sprintf("%.*f", d.Precision, plain)
		if d.Unit != "" {
			s += " " + d.Unit
		}
		return s
	}
}

// Values holds every parameter as a plain value.
type Values struct {
	DryWet         float64
	RateHz         float64
	Depth          float64
	Waveform       wavetable.Waveform
	Feedback       float64
	ChorusOffsetMs float64
	EffectType     modulation.Type
	Bypass         bool
}

// DefaultValues returns the descriptor defaults.
func DefaultValues() Values {
	return Values{
		DryWet:         modulation.DefaultDryWet,
		RateHz:         modulation.DefaultRateHz,
		Depth:          modulation.DefaultDepth,
		Waveform:       wavetable.Sine,
		Feedback:       modulation.DefaultFeedback,
		ChorusOffsetMs: modulation.DefaultChorusOffsetMs,
		EffectType:     modulation.Flanger,
	}
}

// plain returns the plain value of id.
func (v Values) plain(id ParamID) (float64, error) {
	switch id {
	case ParamDryWet:
		return v.DryWet, nil
	case ParamRate:
		return v.RateHz, nil
	case ParamDepth:
		return v.Depth, nil
	case ParamWaveform:
		return float64(v.Waveform), nil
	case ParamFeedback:
		return v.Feedback, nil
	case ParamChorusOffset:
		return v.ChorusOffsetMs, nil
	case ParamEffectType:
		return float64(v.EffectType), nil
	case ParamBypass:
		if v.Bypass {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownParam, id)
	}
}

// setPlain stores a plain value for id.
func (v *Values) setPlain(id ParamID, plain float64) error {
	switch id {
	case ParamDryWet:
		v.DryWet = plain
	case ParamRate:
		v.RateHz = plain
	case ParamDepth:
		v.Depth = plain
	case ParamWaveform:
		v.Waveform = wavetable.Waveform(plain)
	case ParamFeedback:
		v.Feedback = plain
	case ParamChorusOffset:
		v.ChorusOffsetMs = plain
	case ParamEffectType:
		v.EffectType = modulation.Type(plain)
	case ParamBypass:
		v.Bypass = plain > 0.5
	default:
		return fmt.Errorf("%w: %d", ErrUnknownParam, id)
	}
	return nil
}

// Get returns the plain value of parameter id.
func (v Values) Get(id ParamID) (float64, error) {
	return v.plain(id)
}

// Set stores a plain value for parameter id. Range values must lie within
// the descriptor bounds and list values must name a valid choice.
func (v *Values) Set(id ParamID, plain float64) error {
	d, err := Lookup(id)
	if err != nil {
		return err
	}

	if math.IsNaN(plain) || math.IsInf(plain, 0) {
		return fmt.Errorf("host: %s must be finite: %f", d.Name, plain)
	}

	switch d.Kind {
	case KindList:
		if plain != math.Trunc(plain) || plain < 0 || int(plain) >= len(d.Choices) {
			return fmt.Errorf("host: %s must be an index in [0, %d]: %g", d.Name, len(d.Choices)-1, plain)
		}
	case KindRange:
		if plain < d.Min || plain > d.Max {
			return fmt.Errorf("host: %s must be in [%g, %g]: %g", d.Name, d.Min, d.Max, plain)
		}
	}

	return v.setPlain(id, plain)
}

// Choice returns the index of name among the choices of a list parameter.
// Matching ignores case.
func (d Descriptor) Choice(name string) (int, error) {
	for i, c := range d.Choices {
		if strings.EqualFold(c, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("host: %s has no choice %q", d.Name, name)
}
