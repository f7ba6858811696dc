//go:build !headless

package playback

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

const pollInterval = 20 * time.Millisecond

// Play blocks until channels have been played or ctx is done.
//
// oto allows a single context per process, so Play must not be called
// with a different sample rate or channel count once it has run.
func Play(ctx context.Context, sampleRate int, channels [][]float64) error {
	pcm, err := Interleave(channels)
	if err != nil {
		return err
	}

	otoCtx, err := device(sampleRate, len(channels))
	if err != nil {
		return err
	}

	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return player.Err()
}

var (
	otoContext  *oto.Context
	otoRate     int
	otoChannels int
)

func device(sampleRate, channels int) (*oto.Context, error) {
	if otoContext != nil {
		if sampleRate != otoRate || channels != otoChannels {
			return nil, fmt.Errorf("playback: device opened at %d Hz/%d ch, requested %d Hz/%d ch",
				otoRate, otoChannels, sampleRate, channels)
		}
		return otoContext, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("playback: open device: %w", err)
	}
	<-ready

	otoContext, otoRate, otoChannels = ctx, sampleRate, channels
	return ctx, nil
}
