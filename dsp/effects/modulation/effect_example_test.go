package modulation_test

import (
	"fmt"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
)

func ExampleEffect_SetType() {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(48000))
	fx, err := modulation.NewEffect(cfg,
		modulation.WithRateHz(0.5),
		modulation.WithDepth(0.5),
		modulation.WithChorusOffsetMs(10),
	)
	if err != nil {
		fmt.Println("error")
		return
	}

	for _, t := range []modulation.Type{modulation.Flanger, modulation.Chorus, modulation.Vibrato} {
		fx.SetType(t)
		fx.ProcessSample(0, 0)
		fmt.Printf("%s delta=%gms offset=%.2fms wet=%g\n", t, fx.DeltaDelayMs(), fx.Offset(0), fx.Line().Wet())
	}
	// Output:
	// Flanger delta=7ms offset=1.76ms wet=0.5
	// Chorus delta=25ms offset=16.26ms wet=0.5
	// Vibrato delta=7ms offset=1.76ms wet=1
}
