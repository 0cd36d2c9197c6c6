// Command gen writes a measurements file by sampling the reference
// weather stations uniformly at random.
//
//	gen [flags] <path> <size>
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"onebrc/internal/logutil"
	"onebrc/internal/measure"
	"onebrc/internal/sample"
	"onebrc/internal/station"
	"onebrc/internal/timing"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	flagStations := fs.String("stations", station.DefaultPath, "reference weather stations file")
	flagLogLevel := fs.String("log-level", logutil.DefaultLevel, "debug, info, warn or error")
	flagPlot := fs.String("plot", "", "write a phase timing chart to this file")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if fs.NArg() != 2 {
		fmt.Fprintf(stdout, "Usage: %s <path> <size>\n", args[0])
		return nil
	}

	path := fs.Arg(0)
	size, err := parseSize(fs.Arg(1))
	if err != nil {
		return err
	}

	start := time.Now()
	if err := logutil.Init(*flagLogLevel, stderr); err != nil {
		return err
	}
	t := timing.New()

	t.Mark("load stations")
	stations, err := station.Load(*flagStations)
	if err != nil {
		return err
	}
	log.Info("loaded stations", zap.String("path", *flagStations), zap.Int("stations", len(stations)))

	sampler, err := sample.New(stations, nil)
	if err != nil {
		return errors.Annotatef(err, "stations file '%s'", *flagStations)
	}

	t.Mark("write measurements")
	log.Info("writing measurements", zap.String("path", path), zap.Uint64("lines", size))
	report, err := measure.WriteFile(path, sampler, size)
	if err != nil {
		return err
	}
	report.Elapsed = time.Since(start)

	fmt.Fprintln(stdout, report)
	t.Report()

	if *flagPlot != "" {
		if err := timing.Plot(t.Events, *flagPlot); err != nil {
			return err
		}
	}
	return nil
}

// parseSize reads a non-negative line count. Underscores may be used as
// digit separators, e.g. 1_000_000_000.
func parseSize(s string) (uint64, error) {
	size, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, errors.Annotatef(err, "invalid size %q", s)
	}
	return size, nil
}
