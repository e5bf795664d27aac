package ops

import "github.com/pyworld-ml/pyworld/internal/tensor"

// SumOp represents a full reduction to a scalar.
// Backward broadcasts the scalar gradient to the input shape.
type SumOp struct{ unaryOp }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for sum.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{broadcastTo(outputGrad, op.input.Shape(), backend)}
}

// SumDimOp represents a reduction sum along a dimension: output = sum(x, dim).
//
// Backward:
//
//	grad_x = broadcast(grad_y, x.shape)
//
// If keepDim=false the gradient is first given back its size-1 axis.
type SumDimOp struct {
	unaryOp
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{unaryOp{input: x, output: output}, dim, keepDim}
}

// Backward computes input gradients for sum reduction.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inShape := op.input.Shape()
	dim := op.dim
	if dim < 0 {
		dim += len(inShape)
	}

	grad := outputGrad
	if !op.keepDim {
		kept := inShape.Clone()
		kept[dim] = 1
		grad = backend.Reshape(grad, kept)
	}
	return []*tensor.RawTensor{broadcastTo(grad, inShape, backend)}
}
