package nn

import (
	"fmt"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// The gradient is accumulated across backward passes until ZeroGrad, and
// updates replace the parameter's storage (Set) instead of writing into it,
// so a graph recorded before the update keeps its forward-time values.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil until a backward pass reaches it
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[B]
	grad   *tensor.RawTensor
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the current parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] {
	return p.tensor
}

// Grad returns the accumulated gradient, or nil if none has been accumulated
// since the last ZeroGrad.
func (p *Parameter[B]) Grad() *tensor.RawTensor {
	return p.grad
}

// AccumulateGrad adds g to the accumulated gradient.
func (p *Parameter[B]) AccumulateGrad(g *tensor.RawTensor) {
	if !g.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Errorf("parameter %s: %w: gradient %v for value %v",
			p.name, tensor.ErrShapeMismatch, g.Shape(), p.tensor.Shape()))
	}
	if p.grad == nil {
		p.grad = g.Clone()
		return
	}
	acc := p.grad.Data()
	for i, v := range g.Data() {
		acc[i] += v
	}
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// Set replaces the parameter value with raw.
func (p *Parameter[B]) Set(raw *tensor.RawTensor) {
	if !raw.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Errorf("parameter %s: %w: new value %v for %v",
			p.name, tensor.ErrShapeMismatch, raw.Shape(), p.tensor.Shape()))
	}
	p.tensor = tensor.New(raw, p.tensor.Backend())
}
