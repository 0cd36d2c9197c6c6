package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"onebrc/internal/aggregate"
	"onebrc/internal/sample"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reference = `# Adapted from https://simplemaps.com/data/world-cities
# Licensed under Creative Commons Attribution 4.0 (https://creativecommons.org/licenses/by/4.0/)
Springfield;14.5
Shelbyville;9.2
`

func writeReference(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "weather_stations.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func gen(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"gen"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	require.True(t, bytes.HasSuffix(data, []byte("\n")))
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"out.txt"},
		{"out.txt", "4", "extra"},
	} {
		out, err := gen(t, args...)
		require.NoError(t, err)
		assert.Equal(t, "Usage: gen <path> <size>\n", out)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	stations := writeReference(t, dir, reference)
	output := filepath.Join(dir, "measurements.txt")

	out, err := gen(t, "-stations", stations, output, "4")
	require.NoError(t, err)
	assert.Regexp(t, `^Generated 4 lines \(\d+B\) in \d+\.\d{3}s\n$`, out)

	lines := readLines(t, output)
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Contains(t, []string{"Springfield;14.5", "Shelbyville;9.2"}, line)
	}
}

func TestGenerateDefaultStationsPath(t *testing.T) {
	root := t.TempDir()
	writeReference(t, root, reference)
	work := filepath.Join(root, "work")
	require.NoError(t, os.Mkdir(work, 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = gen(t, "measurements.txt", "3")
	require.NoError(t, err)
	assert.Len(t, readLines(t, filepath.Join(work, "measurements.txt")), 3)
}

func TestGenerateZero(t *testing.T) {
	dir := t.TempDir()
	stations := writeReference(t, dir, reference)
	output := filepath.Join(dir, "measurements.txt")

	out, err := gen(t, "-stations", stations, output, "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 0 lines (0B)")

	fi, err := os.Stat(output)
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestGenerateUnderscoreSize(t *testing.T) {
	dir := t.TempDir()
	stations := writeReference(t, dir, reference)
	output := filepath.Join(dir, "measurements.txt")

	_, err := gen(t, "-stations", stations, output, "1_000")
	require.NoError(t, err)
	assert.Len(t, readLines(t, output), 1000)
}

func TestGenerateFailures(t *testing.T) {
	t.Run("invalid size leaves output untouched", func(t *testing.T) {
		dir := t.TempDir()
		stations := writeReference(t, dir, reference)
		output := filepath.Join(dir, "measurements.txt")

		for _, size := range []string{"four", "-1", "1.5", ""} {
			_, err := gen(t, "-stations", stations, output, size)
			require.Error(t, err, size)
			assert.Contains(t, err.Error(), "invalid size")
			assert.NoFileExists(t, output)
		}
	})

	t.Run("missing stations file", func(t *testing.T) {
		dir := t.TempDir()
		output := filepath.Join(dir, "measurements.txt")
		_, err := gen(t, "-stations", filepath.Join(dir, "missing.csv"), output, "4")
		require.Error(t, err)
		assert.True(t, os.IsNotExist(errors.Cause(err)))
		assert.NoFileExists(t, output)
	})

	t.Run("no records in stations file", func(t *testing.T) {
		dir := t.TempDir()
		stations := writeReference(t, dir, "# only\n# comments\n")
		output := filepath.Join(dir, "measurements.txt")
		_, err := gen(t, "-stations", stations, output, "4")
		require.Error(t, err)
		assert.Equal(t, sample.ErrNoStations, errors.Cause(err))
		assert.NoFileExists(t, output)
	})

	t.Run("malformed station value", func(t *testing.T) {
		dir := t.TempDir()
		stations := writeReference(t, dir, reference+"Ogdenville;hot\n")
		_, err := gen(t, "-stations", stations, filepath.Join(dir, "measurements.txt"), "4")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 5")
	})

	t.Run("unwritable output", func(t *testing.T) {
		dir := t.TempDir()
		stations := writeReference(t, dir, reference)
		_, err := gen(t, "-stations", stations, filepath.Join(dir, "missing", "out.txt"), "4")
		require.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		dir := t.TempDir()
		stations := writeReference(t, dir, reference)
		_, err := gen(t, "-log-level", "loud", "-stations", stations, filepath.Join(dir, "out.txt"), "4")
		require.Error(t, err)
	})
}

func TestGenerateThenAggregate(t *testing.T) {
	dir := t.TempDir()
	stations := writeReference(t, dir, reference+"Capital City;-3.25\nOgdenville;0\n")
	output := filepath.Join(dir, "measurements.txt")

	_, err := gen(t, "-stations", stations, output, "20000")
	require.NoError(t, err)

	result, err := aggregate.File(context.Background(), output, aggregate.Options{Workers: 4, BlockSize: 4096})
	require.NoError(t, err)
	assert.Equal(t, 20_000, result.Count())

	want := map[string]string{
		"Springfield":  "14.5/14.5/14.5",
		"Shelbyville":  "9.2/9.2/9.2",
		"Capital City": "-3.2/-3.2/-3.2",
		"Ogdenville":   "0.0/0.0/0.0",
	}
	for name, summary := range result.Strings() {
		assert.Equal(t, want[name], summary, name)
	}
}

func TestGeneratePlot(t *testing.T) {
	dir := t.TempDir()
	stations := writeReference(t, dir, reference)
	chart := filepath.Join(dir, "events.png")

	_, err := gen(t, "-plot", chart, "-stations", stations, filepath.Join(dir, "measurements.txt"), "10")
	require.NoError(t, err)
	assert.FileExists(t, chart)
}
