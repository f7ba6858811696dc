//go:build headless

package playback

import (
	"context"
	"errors"
	"testing"
)

func TestPlayHeadless(t *testing.T) {
	err := Play(context.Background(), 44100, [][]float64{{0, 0}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v want ErrUnavailable", err)
	}
}
