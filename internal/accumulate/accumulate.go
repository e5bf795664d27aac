// Package accumulate implements running statistics over named channels.
//
// Optimisers push one value per channel per training step; the training
// loop reads the current averages for logging and resets them per epoch.
//
//	cma := accumulate.NewCMA("loss", "kld_loss")
//	cma.Push(1.5, 0.2)
//	cma.Get("loss") // 1.5
package accumulate

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Errors carried by the panics of misuse.
var (
	ErrChannelCount   = errors.New("accumulate: wrong number of values")
	ErrUnknownChannel = errors.New("accumulate: unknown channel")
)

// Accumulator is a running statistic over a fixed set of labelled channels.
type Accumulator interface {
	// Push adds one value per channel. It panics with ErrChannelCount when
	// len(values) differs from the number of channels.
	Push(values ...float64)

	// Reset forgets every pushed value.
	Reset()

	// Value returns the current statistic per channel, in label order.
	Value() []float64

	// Get returns the current statistic of one channel. It panics with
	// ErrUnknownChannel for labels the accumulator does not have.
	Get(label string) float64

	// Labels returns the channel labels.
	Labels() []string

	// Count returns the number of pushes since construction or Reset.
	Count() int

	// Map returns the current statistic keyed by label.
	Map() map[string]float64
}

// channels holds the labels shared by every accumulator.
type channels struct {
	labels []string
	index  map[string]int
}

func newChannels(labels []string) channels {
	if len(labels) == 0 {
		panic("accumulate: at least one channel label is required")
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			panic(fmt.Sprintf("accumulate: duplicate channel %q", l))
		}
		index[l] = i
	}
	return channels{labels: slices.Clone(labels), index: index}
}

func (c channels) check(values []float64) {
	if len(values) != len(c.labels) {
		panic(fmt.Errorf("%w: got %d, channels %v", ErrChannelCount, len(values), c.labels))
	}
}

func (c channels) indexOf(label string) int {
	i, ok := c.index[label]
	if !ok {
		panic(fmt.Errorf("%w: %q (have %v)", ErrUnknownChannel, label, c.labels))
	}
	return i
}

// Labels returns a copy of the channel labels.
func (c channels) Labels() []string {
	return slices.Clone(c.labels)
}

func (c channels) toMap(values []float64) map[string]float64 {
	m := make(map[string]float64, len(values))
	for i, l := range c.labels {
		m[l] = values[i]
	}
	return m
}

// Format renders the statistics of a as "label=value" pairs in label order.
func Format(a Accumulator) string {
	m := a.Map()
	parts := make([]string, 0, len(m))
	for _, l := range a.Labels() {
		parts = append(parts, fmt.Sprintf("%s=%.6g", l, m[l]))
	}
	return strings.Join(parts, " ")
}

// Merge combines the readouts of several accumulators into one map.
// Later accumulators win on duplicate labels.
func Merge(accs ...Accumulator) map[string]float64 {
	out := make(map[string]float64)
	for _, a := range accs {
		maps.Copy(out, a.Map())
	}
	return out
}
