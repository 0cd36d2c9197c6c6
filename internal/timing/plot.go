package timing

import (
	"strings"

	"github.com/pingcap/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot draws events over time, one row per event kind, and saves the chart
// to path. The image format follows the file extension.
func Plot(events []Event, path string) error {
	if len(events) == 0 {
		return errors.New("no events to plot")
	}

	zMap := map[string]int{}
	keys := []string{}
	pointsMap := make(map[string]plotter.XYs)
	var maxID float64

	startTime := events[0].Time
	for _, event := range events {
		key := strings.Trim(event.Text, " 0123456789")
		id, ok := zMap[key]
		if !ok {
			id = len(zMap) + 1 // Start IDs at 1
			zMap[key] = id
			keys = append(keys, key)
		}
		if float64(id) > maxID {
			maxID = float64(id)
		}
		pointsMap[key] = append(pointsMap[key], plotter.XY{
			X: event.Time.Sub(startTime).Seconds(),
			Y: float64(id),
		})
	}

	p := plot.New()
	p.Title.Text = "Events Over Time"
	p.X.Label.Text = "Seconds"
	p.Y.Label.Text = "Event Type"

	var ticks []plot.Tick
	for _, key := range keys {
		ticks = append(ticks, plot.Tick{Value: float64(zMap[key]), Label: key})
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	colors := plotutil.SoftColors
	for i, key := range keys {
		scatter, err := plotter.NewScatter(pointsMap[key])
		if err != nil {
			return errors.Annotatef(err, "scatter '%s'", key)
		}
		scatter.GlyphStyle.Color = colors[i%len(colors)]
		p.Add(scatter)
	}

	p.Y.Min = 0.5
	p.Y.Max = maxID + 0.5

	if err := p.Save(16*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Annotatef(err, "save plot '%s'", path)
	}
	return nil
}
