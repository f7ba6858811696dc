package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/internal/playback"
)

func runPlay(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	var ef effectFlags
	ef.register(fs)
	sampleRate := fs.Int("sr", 0, "playback sample rate in Hz (0 keeps the file rate)")
	blockSize := fs.Int("block", core.DefaultProcessorConfig().BlockSize, "processing block size in samples")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: modfx play [flags] in.wav\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("play takes exactly one input file")
	}

	cfg, err := ef.config(ctx, fs, *blockSize)
	if err != nil {
		return err
	}

	in := fs.Arg(0)
	clip, err := loadClip(a.logger, in, *sampleRate)
	if err != nil {
		return err
	}
	out, err := process(ctx, clip, cfg)
	if err != nil {
		return err
	}

	a.logger.Info("playing", "file", in, "seconds", fmt.Sprintf("%.1f", out.Duration()),
		"type", cfg.values.EffectType, "waveform", cfg.values.Waveform)
	if a.interactive {
		fmt.Fprintf(a.stderr, "press Ctrl+C to stop\n")
	}

	err = playback.Play(ctx, out.SampleRate, out.Channels)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
