// Command stats prints the min/mean/max temperature of every station in a
// measurements file as a JSON object keyed by station name.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"onebrc/internal/aggregate"
	"onebrc/internal/logutil"
	"onebrc/internal/timing"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	flagWorkers := fs.Int("workers", runtime.NumCPU(), "parser goroutines")
	flagBlock := fs.Int("block", aggregate.READ_BUF, "block size in bytes, bounds the longest line")
	flagLogLevel := fs.String("log-level", logutil.DefaultLevel, "debug, info, warn or error")
	flagPlot := fs.String("plot", "", "write a phase timing chart to this file")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stdout, "Usage: %s <FILE>\n", args[0])
		return nil
	}

	if err := logutil.Init(*flagLogLevel, stderr); err != nil {
		return err
	}
	t := timing.New()

	t.Mark("aggregate")
	stats := &aggregate.Stats{}
	output, err := aggregate.File(ctx, fs.Arg(0), aggregate.Options{
		Workers:   *flagWorkers,
		BlockSize: *flagBlock,
		Stats:     stats,
	})
	if err != nil {
		return err
	}
	log.Info("aggregated",
		zap.Int("stations", len(output)),
		zap.Int("lines", output.Count()),
		zap.Duration("read", stats.Read.Duration()),
		zap.Duration("parse", stats.Parse.Duration()),
		zap.Duration("merge", stats.Merge.Duration()))

	t.Mark("print")
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output.Strings()); err != nil {
		return errors.Annotate(err, "print summary")
	}
	t.Report()

	if *flagPlot != "" {
		if err := timing.Plot(t.Events, *flagPlot); err != nil {
			return err
		}
	}
	return nil
}
