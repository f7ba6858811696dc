package buffer

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-modfx/dsp/core"
)

// ErrCapacity is returned when a ring is requested with a non-positive capacity.
var ErrCapacity = errors.New("ring capacity must be > 0")

// Ring is a fixed-capacity circular buffer whose capacity is always a power
// of two, so any integer index (including negative ones) is wrapped with a
// single bitmask.
type Ring[T core.Sample] struct {
	data []T
	mask int
}

// NewRing returns a zeroed ring holding at least minCapacity samples. The
// capacity is rounded up to the next power of two and never changes.
func NewRing[T core.Sample](minCapacity int) (*Ring[T], error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, minCapacity)
	}

	size := core.NextPowerOfTwo(minCapacity)

	return &Ring[T]{
		data: make([]T, size),
		mask: size - 1,
	}, nil
}

// Len returns the ring capacity.
func (r *Ring[T]) Len() int { return len(r.data) }

// Mask returns Len()-1.
func (r *Ring[T]) Mask() int { return r.mask }

// Wrap maps any index into [0, Len()).
func (r *Ring[T]) Wrap(i int) int { return i & r.mask }

// At returns the sample at the wrapped index i.
func (r *Ring[T]) At(i int) T { return r.data[i&r.mask] }

// Set stores v at the wrapped index i.
func (r *Ring[T]) Set(i int, v T) { r.data[i&r.mask] = v }

// Reset zero-fills the ring.
func (r *Ring[T]) Reset() { core.Zero(r.data) }
