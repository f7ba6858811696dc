package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-modfx/host"
)

func runParams(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return printParams(a.stdout)
}

func printParams(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tRange\tDefault\n")
	fmt.Fprintf(tw, "--\t----\t-----\t-------\n")

	for _, d := range host.Descriptors() {
		var rng string
		switch d.Kind {
		case host.KindList:
			rng = strings.Join(d.Choices, " | ")
		case host.KindToggle:
			rng = "Off | On"
		default:
			rng = d.Format(d.Min) + " .. " + d.Format(d.Max)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.ID, d.Name, rng, d.Format(d.Default))
	}

	return tw.Flush()
}
