// Package data provides in-memory datasets and a mini-batch loader.
package data

import (
	"github.com/pkg/errors"
)

// Dataset is a set of flattened samples with one label each.
type Dataset struct {
	// Inputs holds Len()*Features values, row-major.
	Inputs []float64
	// Labels holds one class label per sample.
	Labels []float64
	// Features is the flattened size of one sample.
	Features int
	// Rows and Cols give the image shape of a sample, when it has one.
	Rows, Cols int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Sample returns the features of sample i without copying.
func (d *Dataset) Sample(i int) []float64 {
	return d.Inputs[i*d.Features : (i+1)*d.Features]
}

// Validate checks that inputs and labels agree.
func (d *Dataset) Validate() error {
	if d.Features <= 0 {
		return errors.Errorf("dataset: features must be positive, got %d", d.Features)
	}
	if len(d.Inputs) != d.Len()*d.Features {
		return errors.Errorf("dataset: %d input values for %d samples of %d features",
			len(d.Inputs), d.Len(), d.Features)
	}
	if d.Rows*d.Cols != 0 && d.Rows*d.Cols != d.Features {
		return errors.Errorf("dataset: image shape %dx%d does not match %d features", d.Rows, d.Cols, d.Features)
	}
	return nil
}

// Limit truncates the dataset to at most n samples. Zero or negative n keeps everything.
func (d *Dataset) Limit(n int) {
	if n <= 0 || n >= d.Len() {
		return
	}
	d.Inputs = d.Inputs[:n*d.Features]
	d.Labels = d.Labels[:n]
}
