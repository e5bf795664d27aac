package plot

import (
	"github.com/pkg/errors"

	"github.com/pyworld-ml/pyworld/internal/accumulate"
)

// Dynamic is a line plot that grows over time. Extended points are buffered
// and the figure at path is re-rendered once more than UpdateAfter points
// are pending.
type Dynamic struct {
	path        string
	opts        Options
	series      []Series
	pending     int
	updateAfter int
}

// NewDynamic creates a dynamic plot with one trace per name.
func NewDynamic(path string, updateAfter int, opts Options, names ...string) *Dynamic {
	if len(names) == 0 {
		names = []string{""}
	}
	series := make([]Series, len(names))
	for i, name := range names {
		series[i] = Series{Name: name, X: []float64{}, Y: []float64{}}
	}
	return &Dynamic{
		path:        path,
		opts:        opts,
		series:      series,
		updateAfter: updateAfter,
	}
}

// Extend appends points to trace and renders when enough are pending.
func (d *Dynamic) Extend(trace int, x, y []float64) error {
	if trace < 0 || trace >= len(d.series) {
		return errors.Errorf("dynamic plot: trace %d out of range [0, %d)", trace, len(d.series))
	}
	if len(x) != len(y) {
		return errors.Errorf("dynamic plot: %d x values for %d y values", len(x), len(y))
	}
	s := &d.series[trace]
	s.X = append(s.X, x...)
	s.Y = append(s.Y, y...)
	d.pending += len(x)
	if d.pending > d.updateAfter {
		return d.Flush()
	}
	return nil
}

// Pending returns the number of points not yet rendered.
func (d *Dynamic) Pending() int {
	return d.pending
}

// Flush renders every point received so far.
func (d *Dynamic) Flush() error {
	d.pending = 0
	return Line(d.path, d.opts, d.series...)
}

// History records accumulator readouts against a step counter.
type History struct {
	labels []string
	steps  []float64
	values [][]float64
}

// NewHistory creates a history for the given channel labels.
func NewHistory(labels ...string) *History {
	return &History{
		labels: labels,
		values: make([][]float64, len(labels)),
	}
}

// Record appends the current readout of acc for step. Channels are matched
// by label and a label the accumulator lacks is recorded as 0.
func (h *History) Record(step int, acc accumulate.Accumulator) {
	m := acc.Map()
	h.steps = append(h.steps, float64(step))
	for i, label := range h.labels {
		h.values[i] = append(h.values[i], m[label])
	}
}

// Len returns the number of recorded steps.
func (h *History) Len() int {
	return len(h.steps)
}

// Series returns one line series per label.
func (h *History) Series() []Series {
	out := make([]Series, len(h.labels))
	for i, label := range h.labels {
		out[i] = Series{Name: label, X: h.steps, Y: h.values[i]}
	}
	return out
}

// Plot renders the history as a line plot.
func (h *History) Plot(path string, opts Options) error {
	if h.Len() == 0 {
		return errors.New("history: nothing recorded")
	}
	return Line(path, opts, h.Series()...)
}
