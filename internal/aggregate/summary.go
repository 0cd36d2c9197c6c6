package aggregate

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Summary folds every measurement seen for one station.
type Summary struct {
	Name          string
	Min, Sum, Max float64
	Count         int
}

func newSummary(name string, v float64) *Summary {
	return &Summary{Name: name, Min: v, Sum: v, Max: v, Count: 1}
}

func (s *Summary) Add(v float64) {
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
	s.Sum += v
	s.Count++
}

func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}

	s.Min = min(s.Min, other.Min)
	s.Max = max(s.Max, other.Max)
	s.Sum += other.Sum
	s.Count += other.Count
}

func (s *Summary) Mean() float64 {
	return s.Sum / float64(s.Count)
}

// String renders "min/mean/max", each rounded to one decimal.
func (s *Summary) String() string {
	return PrintIndec(ToIndec(s.Min)) + "/" + PrintIndec(ToIndec(s.Mean())) + "/" + PrintIndec(ToIndec(s.Max))
}

// HashKey is the xxh3 hash of a station name.
type HashKey = uint64

// OutputMap holds one Summary per station.
type OutputMap map[HashKey]*Summary

// Sorted returns the summaries ordered by station name.
func (o OutputMap) Sorted() []*Summary {
	summaries := maps.Values(o)
	slices.SortFunc(summaries, func(a, b *Summary) int {
		return strings.Compare(a.Name, b.Name)
	})
	return summaries
}

// Strings maps each station name to its rendered summary.
func (o OutputMap) Strings() map[string]string {
	out := make(map[string]string, len(o))
	for _, s := range o {
		out[s.Name] = s.String()
	}
	return out
}

// Count is the number of measurements across all stations.
func (o OutputMap) Count() int {
	var n int
	for _, s := range o {
		n += s.Count
	}
	return n
}
