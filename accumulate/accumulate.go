// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package accumulate provides running statistics over named channels.
//
// Optimisers push one value per channel per step; training loops read the
// averages for logging and reset them between epochs.
//
//	ema := accumulate.NewEMA(100, "loss", "kld_loss")
//	ema.Push(1.5, 0.2)
//	fmt.Println(accumulate.Format(ema))
package accumulate

import "github.com/pyworld-ml/pyworld/internal/accumulate"

// Accumulator is a running statistic over a fixed set of labelled channels.
type Accumulator = accumulate.Accumulator

// Errors carried by the panics of misuse.
var (
	ErrChannelCount   = accumulate.ErrChannelCount
	ErrUnknownChannel = accumulate.ErrUnknownChannel
)

// CMA is the cumulative moving average.
type CMA = accumulate.CMA

// NewCMA creates a cumulative moving average over labels.
func NewCMA(labels ...string) *CMA {
	return accumulate.NewCMA(labels...)
}

// SMA is the simple moving average over the last n pushes.
type SMA = accumulate.SMA

// NewSMA creates a simple moving average over a window of n pushes.
func NewSMA(n int, labels ...string) *SMA {
	return accumulate.NewSMA(n, labels...)
}

// EMA is the exponential moving average with span n.
type EMA = accumulate.EMA

// NewEMA creates an exponential moving average with alpha 2/(n+1).
func NewEMA(n int, labels ...string) *EMA {
	return accumulate.NewEMA(n, labels...)
}

// Format renders every channel as "label=value" in label order.
func Format(a Accumulator) string {
	return accumulate.Format(a)
}

// Merge combines the current values of several accumulators into one map.
func Merge(accs ...Accumulator) map[string]float64 {
	return accumulate.Merge(accs...)
}
