// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the parameter update rules.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - RMSProp: Root Mean Square Propagation
//   - Optimizer interface for custom rules
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewLinear(784, 10, rng, backend)
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-3})
//
//	for x, y := range batches {
//	    backend.Tape().StartRecording()
//	    loss := nn.MSELoss(model.Forward(x), y)
//
//	    optimizer.ZeroGrad()
//	    nn.AccumulateGrads(model.Parameters(), autodiff.Backward(loss, autodiff.Release))
//	    optimizer.Step()
//	}
//
// The training-step wrappers in package optimise drive these rules for
// you; use this package directly for custom loops.
package optim
