package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
	"github.com/cwbudde/algo-modfx/dsp/wavetable"
)

// StateSize is the encoded length of Values in bytes.
//
// Layout (little-endian): dry/wet f64, rate f64, depth f64, waveform i8,
// feedback f64, chorus offset f64, effect type i8, bypass i32.
const StateSize = 8 + 8 + 8 + 1 + 8 + 8 + 1 + 4

// ErrTruncatedState is returned when fewer than StateSize bytes are available.
var ErrTruncatedState = errors.New("host: truncated state")

// MarshalBinary encodes v in the persisted state layout.
func (v Values) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, StateSize)
	le := binary.LittleEndian

	buf = le.AppendUint64(buf, math.Float64bits(v.DryWet))
	buf = le.AppendUint64(buf, math.Float64bits(v.RateHz))
	buf = le.AppendUint64(buf, math.Float64bits(v.Depth))
	buf = append(buf, byte(int8(v.Waveform)))
	buf = le.AppendUint64(buf, math.Float64bits(v.Feedback))
	buf = le.AppendUint64(buf, math.Float64bits(v.ChorusOffsetMs))
	buf = append(buf, byte(int8(v.EffectType)))

	var bypass uint32
	if v.Bypass {
		bypass = 1
	}
	buf = le.AppendUint32(buf, bypass)

	return buf, nil
}

// UnmarshalBinary decodes the persisted state layout. v is left unchanged
// on error. Bytes beyond StateSize are ignored.
func (v *Values) UnmarshalBinary(data []byte) error {
	if len(data) < StateSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrTruncatedState, len(data), StateSize)
	}

	le := binary.LittleEndian
	f64 := func(off int) float64 { return math.Float64frombits(le.Uint64(data[off:])) }

	*v = Values{
		DryWet:         f64(0),
		RateHz:         f64(8),
		Depth:          f64(16),
		Waveform:       wavetable.Waveform(int8(data[24])),
		Feedback:       f64(25),
		ChorusOffsetMs: f64(33),
		EffectType:     modulation.Type(int8(data[41])),
		Bypass:         int32(le.Uint32(data[42:])) != 0,
	}

	return nil
}

// WriteState writes v to w.
func WriteState(w io.Writer, v Values) error {
	buf, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("host: write state: %w", err)
	}
	return nil
}

// ReadState reads exactly StateSize bytes from r.
func ReadState(r io.Reader) (Values, error) {
	buf := make([]byte, StateSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Values{}, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedState, n, StateSize)
		}
		return Values{}, fmt.Errorf("host: read state: %w", err)
	}

	var v Values
	if err := v.UnmarshalBinary(buf); err != nil {
		return Values{}, err
	}
	return v, nil
}
