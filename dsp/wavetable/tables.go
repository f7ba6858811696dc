package wavetable

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-modfx/dsp/core"
)

// Waveform selects one of the four tables.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Triangle
	Square
)

// NumWaveforms is the number of selectable waveforms.
const NumWaveforms = 4

const (
	// DefaultSize is the default table length.
	DefaultSize = 1024
	// DefaultHarmonics is the harmonic count used by additive tables when
	// WithHarmonics is given a zero value.
	DefaultHarmonics = 5

	minSize = 4
)

// ErrTableSize is returned for table lengths that are not a power of two >= 4.
var ErrTableSize = errors.New("wavetable size must be a power of two >= 4")

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "Sine"
	case Saw:
		return "Saw"
	case Triangle:
		return "Triangle"
	case Square:
		return "Square"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

// Tables is an immutable set of single-cycle waveform tables. A Tables value
// may be shared by any number of oscillators.
type Tables struct {
	size      int
	harmonics int
	data      [NumWaveforms][]float32
}

// NewTables builds tables from the exact per-sample shapes.
func NewTables(size int) (*Tables, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}

	t := allocTables(size)

	half := float64(size) / 2
	quarter := float64(size) / 4
	threeQuarters := 3 * quarter

	for j := range size {
		x := float64(j)

		t.data[Sine][j] = float32(math.Sin(2 * math.Pi * x / float64(size)))

		if x < half {
			t.data[Saw][j] = float32(x / half)
		} else {
			t.data[Saw][j] = float32((x-(half-1))/half - 1)
		}

		switch {
		case x < quarter:
			t.data[Triangle][j] = float32(x / quarter)
		case x < threeQuarters:
			t.data[Triangle][j] = float32(-2/half*(x-quarter) + 1)
		default:
			t.data[Triangle][j] = float32((x-threeQuarters)/quarter - 1)
		}

		if x < half {
			t.data[Square][j] = 1
		} else {
			t.data[Square][j] = -1
		}
	}

	return t, nil
}

// NewAdditiveTables builds tables by summing sine partials and normalizing
// each table to unit peak amplitude.
//
// Partials per waveform for n harmonics:
//   - saw: all harmonics 1..n+1 with alternating sign and 1/k amplitude
//   - triangle: the first n/2+1 odd harmonics with alternating sign and 1/k² amplitude
//   - square: odd harmonics <= n with 1/k amplitude
func NewAdditiveTables(size, harmonics int) (*Tables, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	if harmonics < 1 {
		return nil, fmt.Errorf("wavetable harmonics must be >= 1: %d", harmonics)
	}

	t := allocTables(size)
	t.harmonics = harmonics

	saw := make([]float64, size)
	tri := make([]float64, size)
	sqr := make([]float64, size)

	for j := range size {
		phase := 2 * math.Pi * float64(j) / float64(size)

		t.data[Sine][j] = float32(math.Sin(phase))

		for k := 1; k <= harmonics+1; k++ {
			n := float64(k)
			sign := 1.0
			if k%2 == 0 {
				sign = -1
			}
			saw[j] += sign / n * math.Sin(n*phase)
		}

		for g := 0; g <= harmonics/2; g++ {
			n := float64(2*g + 1)
			sign := 1.0
			if g%2 == 1 {
				sign = -1
			}
			tri[j] += sign / (n * n) * math.Sin(n*phase)
		}

		for k := 1; k <= harmonics; k += 2 {
			n := float64(k)
			sqr[j] += 1 / n * math.Sin(n*phase)
		}
	}

	normalizeInto(t.data[Saw], saw)
	normalizeInto(t.data[Triangle], tri)
	normalizeInto(t.data[Square], sqr)

	return t, nil
}

// Size returns the table length.
func (t *Tables) Size() int { return t.size }

// Harmonics returns the harmonic count used for additive tables, or 0 for
// exact tables.
func (t *Tables) Harmonics() int { return t.harmonics }

// Table returns the samples for w. Out-of-range selectors return the sine
// table. The returned slice must not be modified.
func (t *Tables) Table(w Waveform) []float32 {
	if w < Sine || w > Square {
		return t.data[Sine]
	}
	return t.data[w]
}

func validateSize(size int) error {
	if size < minSize || !core.IsPowerOfTwo(size) {
		return fmt.Errorf("%w: %d", ErrTableSize, size)
	}
	return nil
}

func allocTables(size int) *Tables {
	t := &Tables{size: size}
	for i := range t.data {
		t.data[i] = make([]float32, size)
	}
	return t
}

// normalizeInto scales src to unit peak magnitude and stores it in dst.
func normalizeInto(dst []float32, src []float64) {
	peak := 0.0
	for _, v := range src {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return
	}

	gain := 1 / peak
	for i, v := range src {
		dst[i] = float32(v * gain)
	}
}
