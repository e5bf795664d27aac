package autodiff

import (
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Gradients maps every tensor reached by a backward pass to its gradient.
type Gradients map[*tensor.RawTensor]*tensor.RawTensor

// Of returns the gradient of t, or nil if the pass did not reach it.
func (g Gradients) Of(t *tensor.RawTensor) *tensor.RawTensor {
	return g[t]
}

// Retention says whether a backward pass keeps the recorded graph.
type Retention bool

// Retention modes.
const (
	// Release drops the graph after the pass.
	Release Retention = false
	// Retain keeps the graph so later passes can reuse the forward computation.
	Retain Retention = true
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// Tape returns the gradient tape for backward computation.
	Tape() *GradientTape
}

// Backward computes gradients of loss using its backend's tape.
//
// The output gradient is seeded with ones, so for a scalar loss the result
// holds dloss/dx for every recorded x. With Release the tape is released
// afterwards and any later pass over the same graph panics with
// ErrGraphReleased.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones(tensor.Shape{2}, backend)
//	y := x.Mul(x).Sum() // y = Σx²
//	grads := autodiff.Backward(y, autodiff.Release)
//	grad := grads.Of(x.Raw()) // 2x
func Backward[B BackwardCapable](loss *tensor.Tensor[B], retain Retention) Gradients {
	backend := loss.Backend()
	tape := backend.Tape()

	seed := tensor.MustRaw(loss.Shape(), loss.Device())
	data := seed.Data()
	for i := range data {
		data[i] = 1
	}

	grads := tape.Backward(loss.Raw(), seed, backend)
	if retain == Release {
		tape.Release()
	}
	return grads
}
