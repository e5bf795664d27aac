package accumulate

import "fmt"

// SMA is a simple moving average over the last n pushes.
type SMA struct {
	channels
	window [][]float64 // ring buffer of pushed vectors
	sum    []float64
	next   int
	filled int
	count  int
}

// NewSMA creates a windowed average over the last n pushes.
func NewSMA(n int, labels ...string) *SMA {
	if n < 1 {
		panic(fmt.Sprintf("accumulate: SMA window must be positive, got %d", n))
	}
	c := newChannels(labels)
	window := make([][]float64, n)
	for i := range window {
		window[i] = make([]float64, len(c.labels))
	}
	return &SMA{channels: c, window: window, sum: make([]float64, len(c.labels))}
}

// Size returns the window length.
func (a *SMA) Size() int {
	return len(a.window)
}

// Push adds a vector, evicting the oldest once the window is full.
func (a *SMA) Push(values ...float64) {
	a.check(values)
	slot := a.window[a.next]
	for i, x := range values {
		if a.filled == len(a.window) {
			a.sum[i] -= slot[i]
		}
		slot[i] = x
		a.sum[i] += x
	}
	a.next = (a.next + 1) % len(a.window)
	if a.filled < len(a.window) {
		a.filled++
	}
	a.count++
}

// Reset empties the window.
func (a *SMA) Reset() {
	clear(a.sum)
	a.next, a.filled, a.count = 0, 0, 0
}

// Value returns the window means in label order.
func (a *SMA) Value() []float64 {
	out := make([]float64, len(a.sum))
	if a.filled == 0 {
		return out
	}
	for i, s := range a.sum {
		out[i] = s / float64(a.filled)
	}
	return out
}

// Get returns the window mean of one channel.
func (a *SMA) Get(label string) float64 {
	return a.Value()[a.indexOf(label)]
}

// Count returns the number of pushes, including evicted ones.
func (a *SMA) Count() int {
	return a.count
}

// Map returns the window means keyed by label.
func (a *SMA) Map() map[string]float64 {
	return a.toMap(a.Value())
}
