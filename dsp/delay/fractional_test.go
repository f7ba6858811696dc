package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/internal/testutil"
)

func newTestLine(t *testing.T, sampleRate float64, opts ...Option) *Fractional {
	t.Helper()

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(sampleRate), core.WithBlockSize(64))
	d, err := NewFractional(cfg, opts...)
	if err != nil {
		t.Fatalf("NewFractional() error = %v", err)
	}
	return d
}

func TestNewFractionalSizing(t *testing.T) {
	tests := []struct {
		sampleRate float64
		opts       []Option
		want       int
	}{
		{44100, nil, 131072},
		{48000, nil, 131072},
		{96000, nil, 262144},
		{1000, nil, 2048},
		{1000, []Option{WithMaxDelaySeconds(0.5)}, 512},
	}

	for _, tc := range tests {
		d := newTestLine(t, tc.sampleRate, tc.opts...)
		if d.Len() != tc.want {
			t.Fatalf("sr=%g: Len()=%d want %d", tc.sampleRate, d.Len(), tc.want)
		}
		if !core.IsPowerOfTwo(d.Len()) {
			t.Fatalf("Len()=%d is not a power of two", d.Len())
		}
	}
}

func TestNewFractionalValidation(t *testing.T) {
	if _, err := NewFractional(core.ProcessorConfig{SampleRate: 0, BlockSize: 64}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	cfg := core.DefaultProcessorConfig()
	if _, err := NewFractional(cfg, WithMixer(nil)); err == nil {
		t.Fatal("expected error for nil mixer")
	}
	for _, s := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewFractional(cfg, WithMaxDelaySeconds(s)); err == nil {
			t.Fatalf("expected error for max delay %g", s)
		}
	}
}

func TestPassThroughAtZeroOffset(t *testing.T) {
	d := newTestLine(t, 44100)
	d.SetDryWet(1)
	d.SetFeedback(0.7)

	for ch := range Channels {
		d.Flush()
		d.SetOffset(0, ch)
		if got := d.ProcessSample(0.3, ch); got != 0.3 {
			t.Fatalf("ch %d: got %g want 0.3", ch, got)
		}
	}

	d.SetDryWet(0.5)
	d.SetOffset(0, 0)
	if got := d.ProcessSample(-0.8, 0); got != -0.8 {
		t.Fatalf("half mix: got %g want -0.8", got)
	}
}

func TestImpulseResponse(t *testing.T) {
	for _, k := range []int{1, 5, 37} {
		d := newTestLine(t, 1000)
		d.SetDryWet(1)
		d.SetFeedback(0.5)

		in := testutil.Impulse[float64](3*k+1, 0)
		for n, x := range in {
			d.SetOffset(float64(k), 0)
			got := d.ProcessSample(x, 0)

			want := 0.0
			switch n {
			case k:
				want = 1
			case 2 * k:
				want = 0.5
			case 3 * k:
				want = 0.25
			}
			if got != want {
				t.Fatalf("K=%d n=%d: got %g want %g", k, n, got, want)
			}
		}
	}
}

func TestFractionalInterpolation(t *testing.T) {
	d := newTestLine(t, 1000)
	d.SetDryWet(1)

	for n := range 64 {
		d.SetOffset(2.25, 0)
		got := d.ProcessSample(float64(n), 0)
		if n < 3 {
			continue
		}
		if want := float64(n) - 2.25; math.Abs(got-want) > 1e-12 {
			t.Fatalf("n=%d: got %g want %g", n, got, want)
		}
	}

	if got := d.Offset(0); got != 2.25 {
		t.Fatalf("Offset()=%g want 2.25", got)
	}
}

func TestDryWetComplementary(t *testing.T) {
	d := newTestLine(t, 44100)

	values := []float64{0, 1, 0.5, 0.1, 0.3, 0.7, 1.0 / 3, 0.999999, 1e-9}
	for i := range 1000 {
		values = append(values, float64(i)/999)
	}

	for _, w := range values {
		d.SetDryWet(w)
		if d.Dry()+d.Wet() != 1.0 {
			t.Fatalf("w=%g: dry+wet=%.17g", w, d.Dry()+d.Wet())
		}
		if d.Wet() != w {
			t.Fatalf("wet=%g want %g", d.Wet(), w)
		}
	}
}

func TestCrossFeedback(t *testing.T) {
	const k = 3

	d := newTestLine(t, 1000)
	d.SetDryWet(1)
	d.SetFeedback(0.5)

	var out [Channels][]float64
	for n := range 12 {
		x := 0.0
		if n == 0 {
			x = 1
		}
		for ch := range Channels {
			d.SetOffset(k, ch)
			in := 0.0
			if ch == 0 {
				in = x
			}
			out[ch] = append(out[ch], d.ProcessSampleCrossFeedback(in, ch))
		}
	}

	// The impulse entering channel 0 is written into channel 1.
	if out[0][k] != 0 || out[1][k] != 1 {
		t.Fatalf("at K: ch0=%g ch1=%g, want 0 and 1", out[0][k], out[1][k])
	}

	// Channel 1's echo comes back into channel 0 scaled by the feedback.
	first := -1
	for n, v := range out[0] {
		if v != 0 {
			first = n
			break
		}
	}
	if first < 0 || out[0][first] != 0.5 {
		t.Fatalf("channel 0 never received the 0.5 cross echo: %v", out[0])
	}
	if first <= k {
		t.Fatalf("cross echo arrived too early at %d", first)
	}
}

func TestExternalFeedback(t *testing.T) {
	d := newTestLine(t, 1000)
	d.SetDryWet(1)
	d.SetFeedback(0.9)
	d.SetExternalFeedback(0.25)

	in := testutil.Impulse[float64](8, 0)
	for n, x := range in {
		d.SetOffset(2, 0)
		got := d.ProcessSampleExternalFeedback(x, 0)

		want := 0.0
		switch {
		case n == 2:
			want = 1.25
		case n > 2:
			want = 0.25
		}
		if got != want {
			t.Fatalf("n=%d: got %g want %g", n, got, want)
		}
	}
}

func TestDelayedSample(t *testing.T) {
	d := newTestLine(t, 1000)
	d.SetDryWet(1)

	d.SetOffset(0, 1)
	d.ProcessSample(0.75, 1)
	for range 4 {
		d.ProcessSample(0, 1)
	}

	d.SetOffset(5, 1)
	if got := d.DelayedSample(1); got != 0.75 {
		t.Fatalf("DelayedSample()=%g want 0.75", got)
	}
}

func TestProcessInPlaceMatchesSample(t *testing.T) {
	for _, mixer := range []Mixer{ScalarMixer{}, NewVectorMixer(0)} {
		block := newTestLine(t, 48000, WithMixer(mixer))
		ref := newTestLine(t, 48000, WithMixer(mixer))
		for _, d := range []*Fractional{block, ref} {
			d.SetDryWet(0.4)
			d.SetFeedback(-0.6)
			d.SetOffset(1.37, 0)
		}

		input := testutil.DeterministicNoise[float64](7, 0.8, 200)
		want := make([]float64, len(input))
		for i, x := range input {
			ref.SetOffset(1.37, 0)
			want[i] = ref.ProcessSample(x, 0)
		}

		got := append([]float64(nil), input...)
		block.ProcessInPlace(got, 0)

		testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
	}
}

func TestOffsetAnyValueStaysInRange(t *testing.T) {
	d := newTestLine(t, 1000, WithMaxDelaySeconds(0.1))
	d.SetDryWet(0.5)
	d.SetFeedback(0.5)

	offsets := []float64{0, 0.01, 99.99, 127, 128, 1000, 1e6, -3, -1e6}
	for n := range 2000 {
		for ch := range Channels {
			d.SetOffset(offsets[(n+ch)%len(offsets)], ch)
			if d.read[ch] < 0 || d.read[ch] >= d.Len() {
				t.Fatalf("read position %d out of range", d.read[ch])
			}
			d.ProcessSample(0.1, ch)
		}
	}
}

func TestFlushAndReset(t *testing.T) {
	d := newTestLine(t, 1000)
	d.SetDryWet(1)
	d.SetFeedback(0.3)
	d.SetExternalFeedback(0.1)
	for range 10 {
		d.SetOffset(4, 0)
		d.ProcessSample(1, 0)
	}

	d.Flush()
	d.SetOffset(4, 0)
	if got := d.ProcessSample(0, 0); got != 0 {
		t.Fatalf("after Flush: got %g want 0", got)
	}
	if d.Wet() != 1 || d.Feedback() != 0.3 {
		t.Fatal("Flush must keep gains")
	}

	d.Reset()
	if d.write[0] != 0 || d.read[0] != 0 || d.Offset(0) != 0 || d.extFeedback != 0 {
		t.Fatal("Reset must rewind positions")
	}
}
