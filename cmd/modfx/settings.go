package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
	"github.com/cwbudde/algo-modfx/host"
	"github.com/cwbudde/algo-modfx/internal/preset"
)

// effectFlags are the effect settings shared by render and play. Explicit
// flags override values loaded from -preset.
type effectFlags struct {
	preset    string
	typ       string
	waveform  string
	rate      float64
	depth     float64
	dryWet    float64
	feedback  float64
	offset    float64
	bypass    bool
	quad      bool
	invert    bool
	tableSize int
	harmonics int
}

func (f *effectFlags) register(fs *flag.FlagSet) {
	d := host.DefaultValues()
	fs.StringVar(&f.preset, "preset", "", "Lua preset file")
	fs.StringVar(&f.typ, "type", d.EffectType.String(), "effect type: flanger, chorus, vibrato")
	fs.StringVar(&f.waveform, "waveform", d.Waveform.String(), "LFO waveform: sine, saw, triangle, square")
	fs.Float64Var(&f.rate, "rate", d.RateHz, "LFO rate in Hz")
	fs.Float64Var(&f.depth, "depth", d.Depth, "modulation depth [0,1]")
	fs.Float64Var(&f.dryWet, "drywet", d.DryWet, "wet amount [0,1]")
	fs.Float64Var(&f.feedback, "feedback", d.Feedback, "feedback gain")
	fs.Float64Var(&f.offset, "offset", d.ChorusOffsetMs, "chorus offset in ms")
	fs.BoolVar(&f.bypass, "bypass", false, "copy the input unchanged")
	fs.BoolVar(&f.quad, "quad", false, "run the right channel LFO a quarter period ahead")
	fs.BoolVar(&f.invert, "invert", false, "invert the LFO polarity")
	fs.IntVar(&f.tableSize, "table-size", 0, "wavetable size (power of two, 0 for default)")
	fs.IntVar(&f.harmonics, "harmonics", -1, "additive tables with this many harmonics (0 for the default count, -1 for exact shapes)")
}

// renderConfig is everything needed to process one clip.
type renderConfig struct {
	values    host.Values
	opts      []modulation.Option
	invert    bool
	blockSize int
}

// config resolves the flags set on fs into a renderConfig.
func (f *effectFlags) config(ctx context.Context, fs *flag.FlagSet, blockSize int) (renderConfig, error) {
	if blockSize <= 0 {
		return renderConfig{}, fmt.Errorf("block size must be > 0: %d", blockSize)
	}

	v := host.DefaultValues()
	if f.preset != "" {
		var err error
		if v, err = preset.Load(ctx, f.preset, v); err != nil {
			return renderConfig{}, err
		}
	}

	var firstErr error
	fs.Visit(func(fl *flag.Flag) {
		if firstErr != nil {
			return
		}
		if err := f.override(&v, fl.Name); err != nil {
			firstErr = fmt.Errorf("-%s: %w", fl.Name, err)
		}
	})
	if firstErr != nil {
		return renderConfig{}, firstErr
	}

	cfg := renderConfig{values: v, invert: f.invert, blockSize: blockSize}
	if f.quad {
		cfg.opts = append(cfg.opts, modulation.WithQuadPhase(true))
	}
	if f.tableSize > 0 {
		cfg.opts = append(cfg.opts, modulation.WithTableSize(f.tableSize))
	}
	if f.harmonics >= 0 {
		cfg.opts = append(cfg.opts, modulation.WithHarmonics(f.harmonics))
	}

	return cfg, nil
}

func (f *effectFlags) override(v *host.Values, name string) error {
	switch name {
	case "type":
		return setChoice(v, host.ParamEffectType, f.typ)
	case "waveform":
		return setChoice(v, host.ParamWaveform, f.waveform)
	case "rate":
		return v.Set(host.ParamRate, f.rate)
	case "depth":
		return v.Set(host.ParamDepth, f.depth)
	case "drywet":
		return v.Set(host.ParamDryWet, f.dryWet)
	case "feedback":
		return v.Set(host.ParamFeedback, f.feedback)
	case "offset":
		return v.Set(host.ParamChorusOffset, f.offset)
	case "bypass":
		v.Bypass = f.bypass
	}
	return nil
}

func setChoice(v *host.Values, id host.ParamID, name string) error {
	d, err := host.Lookup(id)
	if err != nil {
		return err
	}
	i, err := d.Choice(name)
	if err != nil {
		return err
	}
	return v.Set(id, float64(i))
}
