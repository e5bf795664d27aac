package accumulate

import (
	"fmt"
	"slices"
)

// EMA is an exponential moving average with smoothing alpha = 2/(n+1).
// The first push seeds the average.
type EMA struct {
	channels
	alpha float64
	value []float64
	count int
}

// NewEMA creates an exponential moving average spanning roughly n steps.
func NewEMA(n int, labels ...string) *EMA {
	if n < 1 {
		panic(fmt.Sprintf("accumulate: EMA span must be positive, got %d", n))
	}
	c := newChannels(labels)
	return &EMA{
		channels: c,
		alpha:    2 / float64(n+1),
		value:    make([]float64, len(c.labels)),
	}
}

// Alpha returns the smoothing factor.
func (a *EMA) Alpha() float64 {
	return a.alpha
}

// Push updates the average with v += alpha * (x - v).
func (a *EMA) Push(values ...float64) {
	a.check(values)
	a.count++
	if a.count == 1 {
		copy(a.value, values)
		return
	}
	for i, x := range values {
		a.value[i] += a.alpha * (x - a.value[i])
	}
}

// Reset clears the average; the next push seeds it again.
func (a *EMA) Reset() {
	clear(a.value)
	a.count = 0
}

// Value returns the averages in label order.
func (a *EMA) Value() []float64 {
	return slices.Clone(a.value)
}

// Get returns the average of one channel.
func (a *EMA) Get(label string) float64 {
	return a.value[a.indexOf(label)]
}

// Count returns the number of pushes.
func (a *EMA) Count() int {
	return a.count
}

// Map returns the averages keyed by label.
func (a *EMA) Map() map[string]float64 {
	return a.toMap(a.value)
}
