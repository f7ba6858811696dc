package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/host"
	"github.com/cwbudde/algo-modfx/internal/wavio"
	"github.com/cwbudde/algo-modfx/measure/level"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/sync/errgroup"
)

const outputSuffix = ".modfx.wav"

type renderResult struct {
	in, out    string
	frames     int
	sampleRate int
	peakDB     float64
	rmsDB      float64
}

func runRender(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	var ef effectFlags
	ef.register(fs)
	outDir := fs.String("out-dir", "", "output directory (default: next to each input)")
	sampleRate := fs.Int("sr", 0, "processing sample rate in Hz; inputs at other rates are resampled (0 keeps the file rate)")
	blockSize := fs.Int("block", core.DefaultProcessorConfig().BlockSize, "processing block size in samples")
	jobs := fs.Int("jobs", runtime.NumCPU(), "files rendered concurrently")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: modfx render [flags] in.wav [more.wav ...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no input files")
	}
	if *jobs < 1 {
		return fmt.Errorf("jobs must be >= 1: %d", *jobs)
	}

	cfg, err := ef.config(ctx, fs, *blockSize)
	if err != nil {
		return err
	}

	dir := *outDir
	if dir != "" {
		if dir, err = homedir.Expand(dir); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	inputs := fs.Args()
	results := make([]renderResult, len(inputs))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := renderFile(gctx, a.logger, in, outputPath(in, dir), *sampleRate, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			results[i] = res
			if a.interactive {
				fmt.Fprintf(a.stderr, "[%d/%d] %s\n", done.Add(1), len(inputs), res.out)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		a.logger.Info("rendered",
			"in", r.in,
			"out", r.out,
			"frames", r.frames,
			"sample_rate", r.sampleRate,
			"peak_db", fmt.Sprintf("%.2f", r.peakDB),
			"rms_db", fmt.Sprintf("%.2f", r.rmsDB),
		)
	}
	return nil
}

// outputPath places <name>.modfx.wav in dir, or next to in when dir is empty.
func outputPath(in, dir string) string {
	base := filepath.Base(in)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + outputSuffix
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name)
}

func renderFile(ctx context.Context, logger *slog.Logger, in, out string, sampleRate int, cfg renderConfig) (renderResult, error) {
	clip, err := loadClip(logger, in, sampleRate)
	if err != nil {
		return renderResult{}, err
	}

	processed, err := process(ctx, clip, cfg)
	if err != nil {
		return renderResult{}, err
	}

	if err := wavio.WriteFile(out, processed); err != nil {
		return renderResult{}, err
	}

	res := renderResult{
		in:         in,
		out:        out,
		frames:     processed.Frames(),
		sampleRate: processed.SampleRate,
		peakDB:     math.Inf(-1),
		rmsDB:      math.Inf(-1),
	}
	for _, ch := range processed.Channels {
		st := level.Calculate(ch)
		res.peakDB = max(res.peakDB, st.PeakDB)
		res.rmsDB = max(res.rmsDB, st.RMSDB)
	}
	return res, nil
}

func loadClip(logger *slog.Logger, path string, sampleRate int) (*wavio.Clip, error) {
	clip, err := wavio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if sampleRate > 0 && clip.SampleRate != sampleRate {
		logger.Debug("resampling", "file", path, "from", clip.SampleRate, "to", sampleRate)
		if clip, err = wavio.Resample(clip, sampleRate); err != nil {
			return nil, err
		}
	}
	return clip, nil
}

// process runs clip through a freshly activated processor block by block.
func process(ctx context.Context, clip *wavio.Clip, cfg renderConfig) (*wavio.Clip, error) {
	numCh := len(clip.Channels)
	if numCh == 0 || numCh > host.MaxChannels {
		return nil, fmt.Errorf("%d channels, want 1..%d", numCh, host.MaxChannels)
	}

	p := host.NewProcessor(cfg.opts...)
	setup := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(clip.SampleRate)),
		core.WithBlockSize(cfg.blockSize),
	)
	if err := p.SetupProcessing(setup); err != nil {
		return nil, err
	}
	p.SetValues(cfg.values)
	if err := p.SetActive(true); err != nil {
		return nil, err
	}
	if cfg.invert {
		p.Effect().InvertLFO()
	}

	frames := clip.Frames()
	out := wavio.NewClip(clip.SampleRate, numCh, frames)
	out.BitDepth = clip.BitDepth

	src := make([][]float64, numCh)
	dst := make([][]float64, numCh)
	for start := 0; start < frames; start += cfg.blockSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+cfg.blockSize, frames)
		for ch := range numCh {
			src[ch] = clip.Channels[ch][start:end]
			dst[ch] = out.Channels[ch][start:end]
		}
		if err := p.Process64(src, dst); err != nil {
			return nil, err
		}
	}

	return out, nil
}
