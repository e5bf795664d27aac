// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package plot renders training curves, histograms and image grids to
// files with gonum/plot.
package plot

import "github.com/pyworld-ml/pyworld/internal/plot"

// LineMode selects how a series is drawn.
type LineMode = plot.LineMode

// Line modes.
const (
	ModeLine   = plot.ModeLine
	ModeMarker = plot.ModeMarker
	ModeBoth   = plot.ModeBoth
)

// Series is one trace. A nil X plots Y against its index.
type Series = plot.Series

// Options holds figure-level settings.
type Options = plot.Options

// Image is a row-major image with 1 or 3 channels and intensities in [0, 1].
type Image = plot.Image

// Dynamic buffers points and re-renders a line plot every few updates.
type Dynamic = plot.Dynamic

// History records accumulator readouts against a step counter.
type History = plot.History

// Line draws every series on one figure and saves it to path.
func Line(path string, opts Options, series ...Series) error {
	return plot.Line(path, opts, series...)
}

// Histogram draws the series with a shared bin width.
func Histogram(path string, bins int, logScale bool, opts Options, series ...Series) error {
	return plot.Histogram(path, bins, logScale, opts, series...)
}

// Coloured plots y against x as a line whose segments are coloured by
// bins equal-width intervals of z.
func Coloured(path string, x, y, z []float64, bins int, opts Options) error {
	return plot.Coloured(path, x, y, z, bins, opts)
}

// Images splits data into consecutive images of the given geometry.
func Images(data []float64, height, width, channels int) ([]Image, error) {
	return plot.Images(data, height, width, channels)
}

// ImageGrid tiles images into a PNG with cols columns, each pixel scaled
// by scale.
func ImageGrid(path string, images []Image, cols, scale int) error {
	return plot.ImageGrid(path, images, cols, scale)
}

// NewDynamic creates a buffered line plot written to path.
func NewDynamic(path string, updateAfter int, opts Options, names ...string) *Dynamic {
	return plot.NewDynamic(path, updateAfter, opts, names...)
}

// NewHistory creates a history for the given channel labels.
func NewHistory(labels ...string) *History {
	return plot.NewHistory(labels...)
}
