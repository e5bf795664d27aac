// Package plot renders training curves, histograms and image grids to files
// with gonum.org/v1/plot. The file format follows the path's extension
// (.png, .svg, .pdf, .eps, .jpg, .tif).
package plot

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LineMode selects how a series is drawn.
type LineMode int

// Line modes.
const (
	ModeLine LineMode = iota
	ModeMarker
	ModeBoth
)

// String returns the mode name.
func (m LineMode) String() string {
	switch m {
	case ModeLine:
		return "lines"
	case ModeMarker:
		return "markers"
	case ModeBoth:
		return "lines+markers"
	default:
		return "LineMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Series is one trace. A nil X plots Y against its index.
type Series struct {
	Name string
	X    []float64
	Y    []float64
	Mode LineMode
}

// Options holds figure-level settings. Zero values use 6x4 inch figures
// and no labels.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 6 * vg.Inch
	}
	if h <= 0 {
		h = 4 * vg.Inch
	}
	return w, h
}

func newPlot(opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.BackgroundColor = color.White
	p.Legend.Top = true
	return p
}

func save(p *plot.Plot, opts Options, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	w, h := opts.size()
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// legendName returns the series name, or its 1-based position when unnamed.
func legendName(name string, i int) string {
	if name != "" {
		return name
	}
	return strconv.Itoa(i + 1)
}

func (s Series) xys() (plotter.XYs, error) {
	if s.X != nil && len(s.X) != len(s.Y) {
		return nil, errors.Errorf("series %q: %d x values for %d y values", s.Name, len(s.X), len(s.Y))
	}
	pts := make(plotter.XYs, len(s.Y))
	for i, y := range s.Y {
		pts[i].Y = y
		if s.X != nil {
			pts[i].X = s.X[i]
		} else {
			pts[i].X = float64(i)
		}
	}
	return pts, nil
}

// Line plots every series on one set of axes and writes the figure to path.
func Line(path string, opts Options, series ...Series) error {
	if len(series) == 0 {
		return errors.New("line plot: no series")
	}
	p := newPlot(opts)
	if err := addSeries(p, series); err != nil {
		return err
	}
	return save(p, opts, path)
}

func addSeries(p *plot.Plot, series []Series) error {
	for i, s := range series {
		pts, err := s.xys()
		if err != nil {
			return err
		}
		if len(pts) == 0 {
			continue
		}
		c := plotutil.Color(i)
		name := legendName(s.Name, i)

		var thumbs []plot.Thumbnailer
		if s.Mode == ModeLine || s.Mode == ModeBoth {
			l, err := plotter.NewLine(pts)
			if err != nil {
				return errors.Wrapf(err, "series %q", name)
			}
			l.LineStyle.Color = c
			l.LineStyle.Width = vg.Points(1.5)
			p.Add(l)
			thumbs = append(thumbs, l)
		}
		if s.Mode == ModeMarker || s.Mode == ModeBoth {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return errors.Wrapf(err, "series %q", name)
			}
			sc.GlyphStyle.Color = c
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(2)
			p.Add(sc)
			thumbs = append(thumbs, sc)
		}
		p.Legend.Add(name, thumbs...)
	}
	return nil
}
