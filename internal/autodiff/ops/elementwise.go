package ops

import (
	"math"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// ExpOp represents output = e^x; grad_x = grad * output.
type ExpOp struct{ unaryOp }

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp represents output = log(x); grad_x = grad / x.
//
// Assumes x > 0. Callers that may reach zero add an epsilon first.
type LogOp struct{ unaryOp }

// NewLogOp creates a new LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for log.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// ClampOp represents output = min(max(x, lo), hi).
// The gradient flows only where x was inside [lo, hi].
type ClampOp struct {
	unaryOp
	lo, hi float64
}

// NewClampOp creates a new ClampOp.
func NewClampOp(x, output *tensor.RawTensor, lo, hi float64) *ClampOp {
	return &ClampOp{unaryOp{input: x, output: output}, lo, hi}
}

// Backward masks the gradient outside the clamp range.
func (op *ClampOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.input.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		if x[i] < op.lo || x[i] > op.hi {
			return 0
		}
		return 1
	})}
}

// ReLUOp represents output = max(0, x); grad_x = grad where x > 0.
type ReLUOp struct{ unaryOp }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.input.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		if x[i] > 0 {
			return 1
		}
		return 0
	})}
}

// SigmoidOp represents σ(x) = 1 / (1 + exp(-x)).
//
// Since the output is already computed: grad_x = grad * σ(x) * (1 - σ(x)).
type SigmoidOp struct{ unaryOp }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	s := op.output.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		return s[i] * (1 - s[i])
	})}
}

// TanhOp represents tanh(x); grad_x = grad * (1 - tanh²(x)).
type TanhOp struct{ unaryOp }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for tanh.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	y := op.output.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		return 1 - y[i]*y[i]
	})}
}

// SoftplusOp represents log(1 + e^x); grad_x = grad * σ(x).
type SoftplusOp struct{ unaryOp }

// NewSoftplusOp creates a new SoftplusOp.
func NewSoftplusOp(x, output *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{unaryOp{input: x, output: output}}
}

// Backward computes the gradient for softplus.
func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.input.Data()
	return []*tensor.RawTensor{mapGrad(outputGrad, func(i int) float64 {
		if x[i] >= 0 {
			return 1 / (1 + math.Exp(-x[i]))
		}
		e := math.Exp(x[i])
		return e / (1 + e)
	})}
}
