package plot

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Coloured plots y against x as a line whose segments are coloured by z.
// z is split into bins equal-width intervals between its minimum and
// maximum, and each interval gets one colour of a heat palette.
func Coloured(path string, x, y, z []float64, bins int, opts Options) error {
	if len(x) != len(y) || len(x) != len(z) {
		return errors.Errorf("coloured plot: lengths differ: x=%d y=%d z=%d", len(x), len(y), len(z))
	}
	if len(x) < 2 {
		return errors.New("coloured plot: need at least two points")
	}
	if bins <= 0 {
		return errors.Errorf("coloured plot: bins must be positive, got %d", bins)
	}

	colours := palette.Heat(bins, 1).Colors()
	idx := binIndex(z, bins)

	p := newPlot(opts)
	start := 0
	for i := 1; i <= len(x); i++ {
		// A run of points sharing a bin becomes one line, joined to the
		// next run's first point so the curve stays continuous.
		if i < len(x) && idx[i] == idx[start] {
			continue
		}
		end := min(i, len(x)-1)
		if end == start {
			break
		}
		pts := make(plotter.XYs, 0, end-start+1)
		for j := start; j <= end; j++ {
			pts = append(pts, plotter.XY{X: x[j], Y: y[j]})
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "coloured plot")
		}
		l.LineStyle.Color = colours[idx[start]]
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		start = i
	}
	return save(p, opts, path)
}

// binIndex maps every z to a bin in [0, bins).
func binIndex(z []float64, bins int) []int {
	lo, hi := bounds(z)
	idx := make([]int, len(z))
	if hi == lo {
		return idx
	}
	for i, v := range z {
		idx[i] = min(bins-1, int((v-lo)/(hi-lo)*float64(bins)))
	}
	return idx
}
