// Package nn implements neural network modules.
//
// This package provides building blocks for constructing neural networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with accumulated gradients
//   - Linear: Fully connected layer
//   - Activations: ReLU, Sigmoid, Tanh
//   - Loss functions: MSE, BCE, BCE-with-logits as a tagged LossKind
//   - Sequential: Container for stacking layers
package nn

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(784, 128, rng, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(128, 10, rng, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}

// StateDicter is implemented by modules whose parameters can be saved by name.
type StateDicter interface {
	StateDict() map[string]*tensor.RawTensor
}

// StateLoader is implemented by modules that can restore a state dict.
type StateLoader interface {
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// ZeroGrad clears the accumulated gradient of every parameter.
func ZeroGrad[B tensor.Backend](params []*Parameter[B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// NumParameters returns the number of scalar weights in params.
func NumParameters[B tensor.Backend](params []*Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	return n
}

// AccumulateGrads adds the gradients of a backward pass into params,
// the way repeated backward calls accumulate in a training framework.
// Parameters the pass did not reach are left untouched.
func AccumulateGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range params {
		if g, ok := grads[p.Tensor().Raw()]; ok {
			p.AccumulateGrad(g)
		}
	}
}

// PrefixStateDict copies src into dst with every key prefixed by prefix + ".".
func PrefixStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	for name, raw := range src {
		dst[prefix+"."+name] = raw
	}
}

// SubStateDict extracts the entries of src under prefix + ".", with the
// prefix stripped.
func SubStateDict(src map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	p := prefix + "."
	for name, raw := range src {
		if len(name) > len(p) && name[:len(p)] == p {
			sub[name[len(p):]] = raw
		}
	}
	return sub
}

// loadParameter copies the entry name of stateDict into p after validating its shape.
func loadParameter[B tensor.Backend](p *Parameter[B], name string, stateDict map[string]*tensor.RawTensor) error {
	raw, ok := stateDict[name]
	if !ok {
		return fmt.Errorf("missing %s in state dict (have %v)", name, slices.Sorted(maps.Keys(stateDict)))
	}
	want := p.Tensor().Shape()
	if !raw.Shape().Equal(want) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", name, want, raw.Shape())
	}
	p.Set(raw.Clone())
	return nil
}
