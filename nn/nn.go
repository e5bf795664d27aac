// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/tensor"
)

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// ZeroGrad clears the accumulated gradient of every parameter.
func ZeroGrad[B tensor.Backend](params []*Parameter[B]) {
	nn.ZeroGrad(params)
}

// NumParameters returns the number of scalar weights in params.
func NumParameters[B tensor.Backend](params []*Parameter[B]) int {
	return nn.NumParameters(params)
}

// AccumulateGrads adds the gradients of one backward pass into params.
func AccumulateGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.AccumulateGrads(params, grads)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization drawn from rng.
//
// Example:
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	layer := nn.NewLinear(784, 128, rng, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// Xavier returns a tensor drawn from the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[B] {
	return nn.Xavier(fanIn, fanOut, shape, rng, backend)
}

// Activations

// ReLU is the rectified linear unit activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid is the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new Tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Containers

// Sequential chains modules, feeding each output into the next module.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Losses

// LossKind selects an element-wise loss.
type LossKind = nn.LossKind

// Loss kinds.
const (
	MSE           = nn.MSE
	BCE           = nn.BCE
	BCEWithLogits = nn.BCEWithLogits
)

// ParseLossKind accepts "mse", "bce", "bce_logits" or a metric label such
// as "mse_loss".
func ParseLossKind(s string) (LossKind, error) {
	return nn.ParseLossKind(s)
}

// Reduction selects how element-wise losses collapse to a scalar.
type Reduction = nn.Reduction

// Reductions.
const (
	Mean = nn.Mean
	Sum  = nn.Sum
)

// Loss computes kind between input and target, reduced to a scalar.
// It panics with tensor.ErrShapeMismatch when the shapes differ.
func Loss[B tensor.Backend](kind LossKind, input, target *tensor.Tensor[B], reduction Reduction) *tensor.Tensor[B] {
	return nn.Loss(kind, input, target, reduction)
}

// MSELoss returns the mean squared error between input and target.
func MSELoss[B tensor.Backend](input, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.MSELoss(input, target)
}

// BCELoss returns the mean binary cross-entropy of probabilities input.
func BCELoss[B tensor.Backend](input, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.BCELoss(input, target)
}

// BCEWithLogitsLoss returns the mean binary cross-entropy of logits input.
func BCEWithLogitsLoss[B tensor.Backend](input, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	return nn.BCEWithLogitsLoss(input, target)
}
