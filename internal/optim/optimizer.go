// Package optim implements the update rules used by the training-step
// optimisers.
//
// This package provides:
//   - Optimizer interface: Base interface for all update rules
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - RMSProp: Root Mean Square Propagation
//
// Rules read the gradients accumulated in each nn.Parameter, so several
// backward passes can contribute before one Step:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 5e-4})
//
//	backend.Tape().StartRecording()
//	loss := nn.MSELoss(model.Forward(x), x)
//	optimizer.ZeroGrad()
//	nn.AccumulateGrads(model.Parameters(), autodiff.Backward(loss, autodiff.Release))
//	optimizer.Step()
package optim

import (
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies the accumulated gradients to the parameter group.
	// Parameters without a gradient are skipped.
	Step()

	// ZeroGrad clears the gradients of the parameter group.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR changes the learning rate for subsequent steps.
	SetLR(lr float64)

	// String describes the rule and its hyperparameters.
	String() string
}

// update writes a new value for param computed element-wise by fn from
// the current value and gradient. The old storage is left untouched.
func update[B tensor.Backend](param *nn.Parameter[B], fn func(i int, value, grad float64) float64) {
	grad := param.Grad().Data()
	next := param.Tensor().Raw().Clone()
	data := next.Data()
	for i, v := range data {
		data[i] = fn(i, v, grad[i])
	}
	param.Set(next)
}

// state returns the buffer for param in buffers, creating a zero buffer on first use.
func state[B tensor.Backend](buffers map[*nn.Parameter[B]][]float64, param *nn.Parameter[B]) []float64 {
	buf, ok := buffers[param]
	if !ok {
		buf = make([]float64, param.Tensor().NumElements())
		buffers[param] = buf
	}
	return buf
}
