// Command modfx renders audio files through the flanger/chorus/vibrato
// effect and inspects its wavetables and parameters.
//
// Usage:
//
//	modfx [-log-level level] <command> [flags] [args]
//
// Commands:
//
//	render   process WAV files and write <name>.modfx.wav next to them
//	play     process one WAV file and play the result
//	tables   print the harmonic content of the LFO wavetables
//	params   list the effect parameters
//
// Examples:
//
//	modfx render -type chorus -rate 0.5 -depth 0.8 guitar.wav
//	modfx render -preset ~/presets/slow.lua -out-dir out/ *.wav
//	modfx play -type vibrato -rate 4 vocal.wav
//	modfx tables -size 2048 -harmonics 9
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/term"
)

type app struct {
	stdout      io.Writer
	stderr      io.Writer
	logger      *slog.Logger
	interactive bool
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"render", "process WAV files and write <name>.modfx.wav", runRender},
	{"play", "process one WAV file and play the result", runPlay},
	{"tables", "print the harmonic content of the LFO wavetables", runTables},
	{"params", "list the effect parameters", runParams},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, interactive bool) int {
	fs := flag.NewFlagSet("modfx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := newLogger(*logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	name := fs.Arg(0)
	for _, c := range commands {
		if c.name != name {
			continue
		}
		a := &app{stdout: stdout, stderr: stderr, logger: logger, interactive: interactive}
		if err := c.run(ctx, a, fs.Args()[1:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			logger.Error(name+" failed", "err", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "error: unknown command %q\n\n", name)
	fs.Usage()
	return 2
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: modfx [flags] <command> [command flags] [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nRun 'modfx <command> -h' for command flags.\n")
}
