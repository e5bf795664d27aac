package plot

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// Histogram draws one histogram per series from its Y values.
//
// Every series uses the same bin width: the widest series range divided by
// bins. With logScale the y axis is logarithmic and empty bins are dropped.
func Histogram(path string, bins int, logScale bool, opts Options, series ...Series) error {
	if bins <= 0 {
		return errors.Errorf("histogram: bins must be positive, got %d", bins)
	}
	if len(series) == 0 {
		return errors.New("histogram: no series")
	}

	width := 0.0
	for _, s := range series {
		lo, hi := bounds(s.Y)
		width = math.Max(width, hi-lo)
	}
	width /= float64(bins)

	p := newPlot(opts)
	if logScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
	}

	for i, s := range series {
		if len(s.Y) == 0 {
			continue
		}
		n := 1
		if lo, hi := bounds(s.Y); width > 0 && hi > lo {
			n = max(1, int(math.Round((hi-lo)/width)))
		}
		h, err := plotter.NewHist(plotter.Values(s.Y), n)
		if err != nil {
			return errors.Wrapf(err, "histogram %q", legendName(s.Name, i))
		}
		h.LogY = logScale
		h.FillColor = plotutil.Color(i)
		h.LineStyle.Color = plotutil.Color(i)
		p.Add(h)
		p.Legend.Add(legendName(s.Name, i), h)
	}
	return save(p, opts, path)
}

func bounds(v []float64) (lo, hi float64) {
	if len(v) == 0 {
		return 0, 0
	}
	return floats.Min(v), floats.Max(v)
}
