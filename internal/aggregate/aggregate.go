// Package aggregate computes per-station min/mean/max over a measurements
// file. The file is cut into newline aligned blocks which are handed out
// round-robin to a fixed set of workers, each folding into its own map;
// the maps are merged once every worker is done.
package aggregate

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strconv"
	"time"

	"onebrc/internal/timing"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
	"golang.org/x/exp/mmap"
	"golang.org/x/sync/errgroup"
)

const (
	READ_BUF       = 1024 * 1024 * 4
	BLOCK_CHAN_BUF = 16
	MAP_SIZE       = 10_000
)

// ErrMalformedLine is returned for a line that is not "name;value".
var ErrMalformedLine = errors.New("malformed measurement line")

type Options struct {
	// Workers defaults to runtime.NumCPU().
	Workers int
	// BlockSize bounds a block and therefore the longest line. Defaults to READ_BUF.
	BlockSize int
	// Stats, when set, accumulates time spent in each stage.
	Stats *Stats
}

type Stats struct {
	Read  timing.AtomicDuration
	Parse timing.AtomicDuration
	Merge timing.AtomicDuration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.BlockSize <= 0 {
		o.BlockSize = READ_BUF
	}
	if o.Stats == nil {
		o.Stats = &Stats{}
	}
	return o
}

// File memory-maps path and aggregates it.
func File(ctx context.Context, path string, opts Options) (OutputMap, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "mmap file '%s'", path)
	}
	defer r.Close()

	log.Info("aggregating file", zap.String("path", path), zap.Int("size", r.Len()))
	output, err := Reader(ctx, r, int64(r.Len()), opts)
	if err != nil {
		return nil, errors.Annotatef(err, "aggregate '%s'", path)
	}
	return output, nil
}

// Reader aggregates the first size bytes of r.
func Reader(ctx context.Context, r io.ReaderAt, size int64, opts Options) (OutputMap, error) {
	opts = opts.withDefaults()
	g, ctx := errgroup.WithContext(ctx)

	chanBlocks := make([]chan []byte, opts.Workers)
	for i := range chanBlocks {
		chanBlocks[i] = make(chan []byte, BLOCK_CHAN_BUF)
	}

	g.Go(func() error {
		defer func() {
			for _, c := range chanBlocks {
				close(c)
			}
		}()
		return readBlocks(ctx, r, size, opts, chanBlocks)
	})

	outputs := make([]OutputMap, opts.Workers)
	for i := range opts.Workers {
		g.Go(func() error {
			output, err := mapBlocks(chanBlocks[i], opts.Stats)
			outputs[i] = output
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tMerge := time.Now()
	defer opts.Stats.Merge.Since(tMerge)
	return merge(outputs)
}

func readBlocks(ctx context.Context, r io.ReaderAt, size int64, opts Options, chanBlocks []chan []byte) error {
	var chanIndex int
	for off := int64(0); off < size; {
		if err := ctx.Err(); err != nil {
			return err
		}
		tRead := time.Now()
		buf := make([]byte, min(int64(opts.BlockSize), size-off))
		n, err := r.ReadAt(buf, off)
		if err != nil && !(err == io.EOF && n == len(buf)) {
			return errors.Annotatef(err, "read block at %d", off)
		}

		if off+int64(n) < size {
			m := bytes.LastIndexByte(buf, '\n')
			if m < 0 {
				return errors.Errorf("line at offset %d exceeds block size %d", off, opts.BlockSize)
			}
			buf = buf[:m+1]
		}
		off += int64(len(buf))
		opts.Stats.Read.Since(tRead)

		select {
		case chanBlocks[chanIndex] <- buf:
		case <-ctx.Done():
			return ctx.Err()
		}
		chanIndex = (chanIndex + 1) % len(chanBlocks)
	}
	return nil
}

func mapBlocks(chanBlock <-chan []byte, stats *Stats) (OutputMap, error) {
	output := make(OutputMap, MAP_SIZE)
	for block := range chanBlock {
		tParse := time.Now()
		err := mapBlock(output, block)
		stats.Parse.Since(tParse)
		if err != nil {
			return nil, err
		}
	}
	return output, nil
}

func mapBlock(output OutputMap, block []byte) error {
	for len(block) > 0 {
		var line []byte
		m := bytes.IndexByte(block, '\n')
		if m < 0 {
			line, block = block, nil
		} else {
			line, block = block[:m], block[m+1:]
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}

		key, val, err := SplitParse(line)
		if err != nil {
			return err
		}

		h := xxh3.Hash(key)
		data, ok := output[h]
		if !ok {
			output[h] = newSummary(string(key), val)
			continue
		}
		if data.Name != string(key) {
			return errors.Errorf("hash collision between '%s' and '%s'", data.Name, key)
		}
		data.Add(val)
	}
	return nil
}

// SplitParse splits a measurement line on its first ';' and parses the value.
func SplitParse(line []byte) (key []byte, val float64, err error) {
	semiColonIndex := bytes.IndexByte(line, ';')
	if semiColonIndex < 0 {
		return nil, 0, errors.Annotatef(ErrMalformedLine, "%q", line)
	}
	key = line[:semiColonIndex]
	rest := line[semiColonIndex+1:]

	if IsIndec(rest) {
		return key, float64(ParseIndec(rest)) / 10, nil
	}
	val, err = strconv.ParseFloat(string(rest), 64)
	if err != nil {
		return nil, 0, errors.Annotatef(ErrMalformedLine, "%q", line)
	}
	return key, val, nil
}

func merge(outputs []OutputMap) (OutputMap, error) {
	output := make(OutputMap, MAP_SIZE)
	for _, subOutput := range outputs {
		if len(output) == 0 {
			output = subOutput
			continue
		}
		for k, v := range subOutput {
			v0, ok := output[k]
			if !ok {
				output[k] = v
				continue
			}
			if v0.Name != v.Name {
				return nil, errors.Errorf("hash collision between '%s' and '%s'", v0.Name, v.Name)
			}
			v0.Merge(v)
		}
	}
	return output, nil
}
