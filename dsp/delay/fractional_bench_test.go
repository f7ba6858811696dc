package delay

import (
	"testing"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/internal/testutil"
)

func BenchmarkFractionalProcessSample(b *testing.B) {
	d, err := NewFractional(core.DefaultProcessorConfig())
	if err != nil {
		b.Fatalf("NewFractional() error = %v", err)
	}
	d.SetDryWet(0.5)
	d.SetFeedback(0.4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := range b.N {
		ms := 0.01 + 7*float64(i&1023)/1024
		d.SetOffset(ms, 0)
		_ = d.ProcessSample(0.25, 0)
	}
}

func BenchmarkFractionalProcessInPlace(b *testing.B) {
	for _, tc := range []struct {
		name  string
		mixer Mixer
	}{
		{"scalar", ScalarMixer{}},
		{"default", DefaultMixer()},
	} {
		b.Run(tc.name, func(b *testing.B) {
			d, err := NewFractional(core.DefaultProcessorConfig(), WithMixer(tc.mixer))
			if err != nil {
				b.Fatalf("NewFractional() error = %v", err)
			}
			d.SetDryWet(0.5)
			d.SetFeedback(0.4)
			d.SetOffset(3.3, 0)

			buf := testutil.DeterministicNoise[float64](3, 0.5, 512)
			b.ReportAllocs()
			b.SetBytes(int64(len(buf) * 8))
			b.ResetTimer()
			for range b.N {
				d.ProcessInPlace(buf, 0)
			}
		})
	}
}
