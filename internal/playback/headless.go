//go:build headless

package playback

import "context"

// Play reports ErrUnavailable in headless builds.
func Play(ctx context.Context, sampleRate int, channels [][]float64) error {
	if _, err := Interleave(channels); err != nil {
		return err
	}
	return ErrUnavailable
}
