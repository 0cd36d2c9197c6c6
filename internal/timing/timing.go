package timing

import (
	"sync/atomic"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// AtomicDuration allows for atomic updates to a time.Duration value.
type AtomicDuration int64

func (a *AtomicDuration) Add(d time.Duration) {
	atomic.AddInt64((*int64)(a), int64(d))
}

func (a *AtomicDuration) Since(start time.Time) {
	stop := time.Now()
	a.Add(stop.Sub(start))
}

func (a *AtomicDuration) Duration() time.Duration {
	return time.Duration(atomic.LoadInt64((*int64)(a)))
}

// Event is a named point in time.
type Event struct {
	Time time.Time
	Text string
}

// Phase is the span between two consecutive marks.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Timings records phase marks for a single run. It is not safe for
// concurrent use; workers report through AtomicDuration instead.
type Timings struct {
	Start  time.Time
	Events []Event
}

func New() *Timings {
	return &Timings{Start: time.Now()}
}

// Mark ends the current phase and starts the one called name.
func (t *Timings) Mark(name string) {
	t.Events = append(t.Events, Event{Time: time.Now(), Text: name})
}

// Phases returns the durations between marks. The last mark's phase runs
// until now.
func (t *Timings) Phases() []Phase {
	phases := make([]Phase, 0, len(t.Events))
	for i, e := range t.Events {
		end := time.Now()
		if i+1 < len(t.Events) {
			end = t.Events[i+1].Time
		}
		phases = append(phases, Phase{Name: e.Text, Duration: end.Sub(e.Time)})
	}
	return phases
}

// Report logs every phase and the total at info level.
func (t *Timings) Report() {
	fields := make([]zap.Field, 0, len(t.Events)+1)
	for _, p := range t.Phases() {
		fields = append(fields, zap.Duration(p.Name, p.Duration))
	}
	fields = append(fields, zap.Duration("total", time.Since(t.Start)))
	log.Info("timings", fields...)
}
