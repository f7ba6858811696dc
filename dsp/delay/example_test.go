package delay_test

import (
	"fmt"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/dsp/delay"
)

func ExampleFractional() {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(1000))
	d, err := delay.NewFractional(cfg)
	if err != nil {
		panic(err)
	}

	d.SetDryWet(1)
	d.SetFeedback(0.5)

	for n := range 7 {
		x := 0.0
		if n == 0 {
			x = 1
		}
		d.SetOffset(3, 0)
		fmt.Printf("%.2f ", d.ProcessSample(x, 0))
	}
	fmt.Println()
	// Output:
	// 0.00 0.00 0.00 1.00 0.00 0.00 0.50
}
