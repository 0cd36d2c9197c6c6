// Package measure writes sampled stations out as a measurements file.
package measure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"onebrc/internal/station"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	WRITE_BUF = 1024 * 256

	// progress is logged this many times over a run
	PROGRESS_STEPS = 10
)

// Source yields the next station to write.
type Source interface {
	Next() station.Station
}

// Report describes a finished measurements file.
type Report struct {
	Lines   uint64
	Bytes   int64
	Elapsed time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("Generated %d lines (%s) in %.3fs", r.Lines, HumanSize(r.Bytes), r.Elapsed.Seconds())
}

// HumanSize formats a byte count using 1024 based units.
func HumanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%dB", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.2fKiB", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.2fMiB", float64(size)/1024/1024)
	default:
		return fmt.Sprintf("%.2fGiB", float64(size)/1024/1024/1024)
	}
}

// Write draws n stations from src and writes each as "name;value\n".
func Write(w io.Writer, src Source, n uint64) error {
	bw := bufio.NewWriterSize(w, WRITE_BUF)
	line := make([]byte, 0, 128)

	var nextPrint, printIncrement uint64 = n / PROGRESS_STEPS, n / PROGRESS_STEPS
	for i := uint64(0); i < n; i++ {
		line = src.Next().AppendLine(line[:0])
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return errors.Annotatef(err, "write line %d", i+1)
		}

		if printIncrement > 0 && i+1 == nextPrint {
			log.Debug("generation progress", zap.Uint64("lines", i+1), zap.Uint64("total", n))
			nextPrint += printIncrement
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Annotate(err, "flush output")
	}
	return nil
}

// WriteFile creates or truncates path, writes n lines from src into it and
// reports the resulting file. Elapsed is left for the caller to fill in.
func WriteFile(path string, src Source, n uint64) (Report, error) {
	file, err := os.Create(path)
	if err != nil {
		return Report{}, errors.Annotatef(err, "open output file '%s'", path)
	}

	if err := Write(file, src, n); err != nil {
		file.Close()
		return Report{}, errors.Annotatef(err, "write output file '%s'", path)
	}
	if err := file.Close(); err != nil {
		return Report{}, errors.Annotatef(err, "close output file '%s'", path)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return Report{}, errors.Annotatef(err, "stat output file '%s'", path)
	}
	return Report{Lines: n, Bytes: fi.Size()}, nil
}
