package host

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
	"github.com/cwbudde/algo-modfx/dsp/wavetable"
)

func sampleValues() Values {
	return Values{
		DryWet:         0.3,
		RateHz:         1.25,
		Depth:          0.8,
		Waveform:       wavetable.Triangle,
		Feedback:       -0.5,
		ChorusOffsetMs: 17.5,
		EffectType:     modulation.Vibrato,
		Bypass:         true,
	}
}

func TestStateLayout(t *testing.T) {
	buf, err := sampleValues().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if len(buf) != StateSize || StateSize != 46 {
		t.Fatalf("len=%d StateSize=%d want 46", len(buf), StateSize)
	}

	le := binary.LittleEndian
	f64 := func(off int) float64 { return math.Float64frombits(le.Uint64(buf[off:])) }

	if f64(0) != 0.3 || f64(8) != 1.25 || f64(16) != 0.8 {
		t.Fatalf("leading doubles: %g %g %g", f64(0), f64(8), f64(16))
	}
	if buf[24] != 2 {
		t.Fatalf("waveform byte=%d want 2", buf[24])
	}
	if f64(25) != -0.5 || f64(33) != 17.5 {
		t.Fatalf("feedback/offset: %g %g", f64(25), f64(33))
	}
	if buf[41] != 2 {
		t.Fatalf("effect type byte=%d want 2", buf[41])
	}
	if le.Uint32(buf[42:]) != 1 {
		t.Fatalf("bypass=%d want 1", le.Uint32(buf[42:]))
	}
}

func TestStateRoundTrip(t *testing.T) {
	in := sampleValues()

	var buf bytes.Buffer
	if err := WriteState(&buf, in); err != nil {
		t.Fatalf("WriteState() error = %v", err)
	}

	out, err := ReadState(&buf)
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	if out != in {
		t.Fatalf("round trip: got %+v want %+v", out, in)
	}

	// Effect type and waveform land in their own fields.
	in.Waveform = wavetable.Saw
	in.EffectType = modulation.Chorus
	data, _ := in.MarshalBinary()
	var got Values
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if got.Waveform != wavetable.Saw || got.EffectType != modulation.Chorus {
		t.Fatalf("waveform=%s type=%s", got.Waveform, got.EffectType)
	}
}

func TestStateTruncated(t *testing.T) {
	full, _ := sampleValues().MarshalBinary()

	for n := 0; n < StateSize; n++ {
		v := DefaultValues()
		if err := v.UnmarshalBinary(full[:n]); !errors.Is(err, ErrTruncatedState) {
			t.Fatalf("n=%d: err=%v want ErrTruncatedState", n, err)
		}
		if v != DefaultValues() {
			t.Fatalf("n=%d: values changed on error", n)
		}

		if _, err := ReadState(bytes.NewReader(full[:n])); !errors.Is(err, ErrTruncatedState) {
			t.Fatalf("ReadState n=%d: err=%v want ErrTruncatedState", n, err)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteStateError(t *testing.T) {
	if err := WriteState(failingWriter{}, DefaultValues()); err == nil {
		t.Fatal("expected write error")
	}
}
