package level

import (
	"math"
	"testing"
)

func sine(n int, period float64, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate([]float64(nil))
	if s.Length != 0 || !math.IsInf(s.RMSDB, -1) || !math.IsInf(s.PeakDB, -1) {
		t.Fatalf("unexpected empty stats: %+v", s)
	}
}

func TestCalculateSine(t *testing.T) {
	x := sine(4800, 480, 0.5)
	s := Calculate(x)

	if math.Abs(s.Peak-0.5) > 1e-9 {
		t.Fatalf("peak=%g want 0.5", s.Peak)
	}
	if math.Abs(s.RMS-0.5/math.Sqrt2) > 1e-9 {
		t.Fatalf("rms=%g want %g", s.RMS, 0.5/math.Sqrt2)
	}
	if math.Abs(s.DC) > 1e-9 {
		t.Fatalf("dc=%g want 0", s.DC)
	}
	if math.Abs(s.CrestFactor-math.Sqrt2) > 1e-6 {
		t.Fatalf("crest=%g want sqrt2", s.CrestFactor)
	}
	if math.Abs(s.PeakDB-(-6.0206)) > 1e-3 {
		t.Fatalf("peak dB=%g", s.PeakDB)
	}
}

func TestPeakAndRMSFloat32(t *testing.T) {
	x := []float32{0, -0.75, 0.25, 0.5}
	if got := Peak(x); got != 0.75 {
		t.Fatalf("peak=%g want 0.75", got)
	}
	want := math.Sqrt((0.75*0.75 + 0.25*0.25 + 0.5*0.5) / 4)
	if got := RMS(x); math.Abs(got-want) > 1e-7 {
		t.Fatalf("rms=%g want %g", got, want)
	}
}

func TestZeroCrossings(t *testing.T) {
	x := []float64{1, -1, -1, 1, 0, 1, -1}
	if got := ZeroCrossings(x); got != 3 {
		t.Fatalf("crossings=%d want 3", got)
	}
}

func TestRisingCrossings(t *testing.T) {
	x := []float64{-1, 1, -1, -0.5, 0, 1}
	got := RisingCrossings(x)
	want := []int{1, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestMeanPeriod(t *testing.T) {
	tests := []float64{48, 100.5, 441}
	for _, period := range tests {
		// Phase-shift so the first sample is not exactly on zero.
		x := make([]float64, 20*int(period))
		for i := range x {
			x[i] = math.Sin(2*math.Pi*(float64(i)+0.3)/period)
		}
		got := MeanPeriod(x)
		if math.Abs(got-period) > 1e-3*period {
			t.Fatalf("period %g: got %g", period, got)
		}
	}
}

func TestMeanPeriodTooShort(t *testing.T) {
	if got := MeanPeriod([]float64{1, 2, 3}); got != 0 {
		t.Fatalf("got %g want 0", got)
	}
}
