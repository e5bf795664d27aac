// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides float64 tensors for the pyworld training library.
//
// # Overview
//
// Tensors are the data structure every model and optimiser wrapper works
// on. This package provides:
//   - Tensor[B]: a tensor bound to the backend that computes on it
//   - RawTensor: the row-major buffer with shape and device
//   - NumPy-style broadcasting for element-wise operations
//
// # Basic Usage
//
//	import (
//	    "github.com/pyworld-ml/pyworld/backend/cpu"
//	    "github.com/pyworld-ml/pyworld/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    z := x.Add(y).Sum()
//	    fmt.Println(z.Item()) // 6
//	}
//
// # Gradients
//
// Wrap the backend with autodiff.New to record operations for a backward
// pass. Parameters are replaced rather than written in place by the
// optimisers, so a recorded graph keeps its forward-time values.
package tensor
