package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-modfx/dsp/wavetable"
	"github.com/cwbudde/algo-modfx/measure/harmonics"
	"github.com/cwbudde/algo-modfx/measure/level"
)

// harmonicThreshold is the relative level below which a partial is not
// listed (-60 dB).
const harmonicThreshold = 1e-3

func runTables(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("tables", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	size := fs.Int("size", wavetable.DefaultSize, "table size (power of two)")
	n := fs.Int("harmonics", -1, "additive tables with this many harmonics (0 for the default count, -1 for exact shapes)")
	maxList := fs.Int("list", 8, "harmonics listed per table")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *maxList < 0 {
		return fmt.Errorf("list must be >= 0: %d", *maxList)
	}

	var (
		tables *wavetable.Tables
		err    error
	)
	if *n >= 0 {
		h := *n
		if h == 0 {
			h = wavetable.DefaultHarmonics
		}
		tables, err = wavetable.NewAdditiveTables(*size, h)
	} else {
		tables, err = wavetable.NewTables(*size)
	}
	if err != nil {
		return err
	}

	return printTables(a.stdout, tables, *maxList)
}

func printTables(w io.Writer, tables *wavetable.Tables, maxList int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Waveform\tSize\tPeak\tRMS\tHighest\tHarmonics\n")
	fmt.Fprintf(tw, "--------\t----\t----\t---\t-------\t---------\n")

	for wf := range wavetable.Waveform(wavetable.NumWaveforms) {
		table := tables.Table(wf)
		res, err := harmonics.Analyze(table)
		if err != nil {
			return err
		}

		present := res.Present(harmonicThreshold)
		list := make([]string, 0, min(len(present), maxList))
		for _, k := range present {
			if len(list) == maxList {
				list = append(list, "...")
				break
			}
			list = append(list, fmt.Sprint(k))
		}

		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%d\t%s\n",
			wf, tables.Size(), level.Peak(table), level.RMS(table),
			res.Highest(harmonicThreshold), strings.Join(list, " "))
	}

	return tw.Flush()
}
