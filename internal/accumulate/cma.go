package accumulate

import "slices"

// CMA is a cumulative moving average: the mean of every value pushed
// since construction or the last Reset.
type CMA struct {
	channels
	mean []float64
	n    int
}

// NewCMA creates a cumulative moving average over the given channels.
func NewCMA(labels ...string) *CMA {
	c := newChannels(labels)
	return &CMA{channels: c, mean: make([]float64, len(c.labels))}
}

// Push updates the mean with m += (x - m) / n.
func (a *CMA) Push(values ...float64) {
	a.check(values)
	a.n++
	for i, x := range values {
		a.mean[i] += (x - a.mean[i]) / float64(a.n)
	}
}

// Reset clears the average.
func (a *CMA) Reset() {
	clear(a.mean)
	a.n = 0
}

// Value returns the means in label order.
func (a *CMA) Value() []float64 {
	return slices.Clone(a.mean)
}

// Get returns the mean of one channel.
func (a *CMA) Get(label string) float64 {
	return a.mean[a.indexOf(label)]
}

// Count returns the number of pushes.
func (a *CMA) Count() int {
	return a.n
}

// Map returns the means keyed by label.
func (a *CMA) Map() map[string]float64 {
	return a.toMap(a.mean)
}
