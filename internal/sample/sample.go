// Package sample draws stations uniformly at random, with replacement.
package sample

import (
	"math/rand/v2"

	"onebrc/internal/station"

	"github.com/pingcap/errors"
)

// ErrNoStations is returned when there is nothing to sample from.
var ErrNoStations = errors.New("no stations to sample from")

type Sampler struct {
	rng      *rand.Rand
	stations []station.Station
}

// New returns a sampler over stations. A nil rng is replaced by a PCG
// source seeded from the runtime's entropy.
func New(stations []station.Station, rng *rand.Rand) (*Sampler, error) {
	if len(stations) == 0 {
		return nil, errors.Trace(ErrNoStations)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{rng: rng, stations: stations}, nil
}

// Next returns one station. Every call is independent of the ones before it.
func (s *Sampler) Next() station.Station {
	return s.stations[s.rng.IntN(len(s.stations))]
}

// Len is the number of stations being sampled.
func (s *Sampler) Len() int {
	return len(s.stations)
}
