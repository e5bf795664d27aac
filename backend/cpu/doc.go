// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - float64 row-major storage
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	backend := cpu.New()
//	x := tensor.Ones(tensor.Shape{2, 3}, backend)
//	y := x.Add(x)
//
// For training, wrap it with autodiff.New so operations are recorded.
//
// # Thread Safety
//
// The CPU backend holds no mutable state and is safe for concurrent use.
package cpu
