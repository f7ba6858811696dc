package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-modfx/dsp/core"
	"github.com/cwbudde/algo-modfx/dsp/effects/modulation"
	"github.com/cwbudde/algo-modfx/dsp/wavetable"
	"github.com/cwbudde/algo-modfx/host"
	"github.com/cwbudde/algo-modfx/internal/testutil"
	"github.com/cwbudde/algo-modfx/internal/wavio"
)

func TestResolveLogLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		if _, err := resolveLogLevel(name); err != nil {
			t.Fatalf("resolveLogLevel(%q) error = %v", name, err)
		}
	}
	if _, err := resolveLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestRunDispatch(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{nil, 2},
		{[]string{"nope"}, 2},
		{[]string{"-log-level", "loud", "params"}, 2},
		{[]string{"params"}, 0},
		{[]string{"render", "-h"}, 0},
		{[]string{"render"}, 1},
	}

	for _, tc := range tests {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), tc.args, &stdout, &stderr, false)
		if code != tc.code {
			t.Fatalf("run(%q)=%d want %d\nstderr: %s", tc.args, code, tc.code, stderr.String())
		}
	}
}

func TestPrintParams(t *testing.T) {
	var buf bytes.Buffer
	if err := printParams(&buf); err != nil {
		t.Fatalf("printParams() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"101", "Dry/Wet", "0.02 Hz .. 5.00 Hz", "Flanger | Chorus | Vibrato", "108"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTables(t *testing.T) {
	var stdout bytes.Buffer
	a := &app{stdout: &stdout, stderr: &bytes.Buffer{}}
	if err := runTables(context.Background(), a, []string{"-size", "256", "-harmonics", "5"}); err != nil {
		t.Fatalf("runTables() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2+wavetable.NumWaveforms {
		t.Fatalf("got %d lines:\n%s", len(lines), stdout.String())
	}
	square := strings.Fields(lines[2+int(wavetable.Square)])
	if square[0] != "Square" || square[4] != "5" {
		t.Fatalf("square row = %q", lines[2+int(wavetable.Square)])
	}

	if err := runTables(context.Background(), a, []string{"-size", "100"}); err == nil {
		t.Fatal("expected error for non power-of-two size")
	}
}

func TestEffectFlagsOverridePreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.lua")
	src := `modfx = { type = "chorus", rate = 0.5, depth = 0.25 }`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var ef effectFlags
	ef.register(fs)
	if err := fs.Parse([]string{"-preset", path, "-depth", "0.9", "-waveform", "square", "-quad"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := ef.config(context.Background(), fs, 128)
	if err != nil {
		t.Fatalf("config() error = %v", err)
	}
	v := cfg.values
	if v.EffectType != modulation.Chorus || v.RateHz != 0.5 || v.Depth != 0.9 || v.Waveform != wavetable.Square {
		t.Fatalf("values = %+v", v)
	}
	if v.Feedback != host.DefaultValues().Feedback {
		t.Fatal("unset values must keep defaults")
	}
	if len(cfg.opts) != 1 || cfg.blockSize != 128 {
		t.Fatalf("opts=%d block=%d", len(cfg.opts), cfg.blockSize)
	}
}

func TestEffectFlagsErrors(t *testing.T) {
	tests := [][]string{
		{"-type", "phaser"},
		{"-rate", "50"},
		{"-preset", "/does/not/exist.lua"},
	}
	for _, args := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		var ef effectFlags
		ef.register(fs)
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		if _, err := ef.config(context.Background(), fs, 64); err == nil {
			t.Fatalf("%q: expected error", args)
		}
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var ef effectFlags
	ef.register(fs)
	if _, err := ef.config(context.Background(), fs, 0); err == nil {
		t.Fatal("expected error for zero block size")
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath(filepath.Join("a", "b", "take.wav"), ""); got != filepath.Join("a", "b", "take.modfx.wav") {
		t.Fatalf("got %q", got)
	}
	if got := outputPath("take.wav", "out"); got != filepath.Join("out", "take.modfx.wav") {
		t.Fatalf("got %q", got)
	}
}

func writeInput(t *testing.T, dir, name string, sampleRate, frames int) string {
	t.Helper()
	clip := &wavio.Clip{
		SampleRate: sampleRate,
		BitDepth:   24,
		Channels: [][]float64{
			testutil.DeterministicSine[float64](220, float64(sampleRate), 0.5, frames),
			testutil.DeterministicSine[float64](330, float64(sampleRate), 0.5, frames),
		},
	}
	path := filepath.Join(dir, name)
	if err := wavio.WriteFile(path, clip); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.wav", 22050, 3000)
	b := writeInput(t, dir, "b.wav", 22050, 1000)
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"render", "-type", "chorus", "-block", "100", "-out-dir", outDir, a, b},
		&stdout, &stderr, false)
	if code != 0 {
		t.Fatalf("render exit %d: %s", code, stderr.String())
	}

	for name, frames := range map[string]int{"a.modfx.wav": 3000, "b.modfx.wav": 1000} {
		clip, err := wavio.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if clip.Frames() != frames || clip.SampleRate != 22050 || len(clip.Channels) != 2 {
			t.Fatalf("%s: frames=%d sr=%d ch=%d", name, clip.Frames(), clip.SampleRate, len(clip.Channels))
		}
	}
	if !strings.Contains(stderr.String(), "rendered") {
		t.Fatalf("missing log output: %s", stderr.String())
	}
}

func TestProcessMatchesProcessor(t *testing.T) {
	clip := &wavio.Clip{
		SampleRate: 48000,
		Channels:   [][]float64{testutil.DeterministicNoise[float64](1, 0.5, 777)},
	}
	v := host.DefaultValues()
	v.EffectType = modulation.Vibrato

	got, err := process(context.Background(), clip, renderConfig{values: v, blockSize: 64})
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}

	p := host.NewProcessor()
	p.SetValues(v)
	setup := core.ApplyProcessorOptions(core.WithSampleRate(48000), core.WithBlockSize(777))
	if err := p.SetupProcessing(setup); err != nil {
		t.Fatal(err)
	}
	if err := p.SetActive(true); err != nil {
		t.Fatal(err)
	}
	want := [][]float64{make([]float64, 777)}
	if err := p.Process64(clip.Channels, want); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got.Channels[0], want[0], 1e-12)
}

func TestProcessRejectsWideClips(t *testing.T) {
	clip := wavio.NewClip(44100, 3, 10)
	if _, err := process(context.Background(), clip, renderConfig{values: host.DefaultValues(), blockSize: 8}); err == nil {
		t.Fatal("expected error for 3 channels")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := process(ctx, wavio.NewClip(44100, 1, 10), renderConfig{values: host.DefaultValues(), blockSize: 8}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
