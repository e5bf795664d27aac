// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ReLU, Sigmoid, Tanh
//   - Loss functions: MSE, BCE, BCE with logits, selected by LossKind
//   - Utilities: Sequential, Module interface, Parameter
//   - Initialization: Xavier
//   - Checkpoints: Save and Load in the safetensors format
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	rng := rand.New(rand.NewPCG(1, 2))
//
//	model := nn.NewSequential[Backend](
//	    nn.NewLinear(784, 128, rng, backend),
//	    nn.NewReLU[Backend](),
//	    nn.NewLinear(128, 784, rng, backend),
//	    nn.NewSigmoid[Backend](),
//	)
//
//	output := model.Forward(input)
//	loss := nn.Loss(nn.BCE, output, input, nn.Mean)
//
// # Parameters
//
// Gradients accumulate across backward passes until ZeroGrad, the way the
// optimiser wrappers in package optimise expect. Optimisers replace a
// parameter's storage with Set instead of writing into it.
package nn
