package cpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pyworld-ml/pyworld/internal/parallel"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, floats.AddTo, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with NumPy-style broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, floats.SubTo, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with NumPy-style broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, floats.MulTo, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with NumPy-style broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, floats.DivTo, func(x, y float64) float64 { return x / y })
}

// binary runs the vectorised kernel when shapes match and falls back to an
// index-mapped loop when broadcasting is required.
func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	vectorized func(dst, s, t []float64) []float64,
	scalar func(x, y float64) float64,
) *tensor.RawTensor {
	cpu.check(op, a, b)
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}

	result := cpu.alloc(outShape)
	if !needsBroadcast {
		vectorized(result.Data(), a.Data(), b.Data())
		return result
	}

	ai := broadcastIndex(outShape, a.Shape())
	bi := broadcastIndex(outShape, b.Shape())
	ad, bd, out := a.Data(), b.Data(), result.Data()
	parallel.Range(len(out), cpu.parallel, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = scalar(ad[ai[i]], bd[bi[i]])
		}
	})
	return result
}

// broadcastIndex maps every flat index of outShape to the flat index of the
// element of inShape that broadcasts onto it.
func broadcastIndex(outShape, inShape tensor.Shape) []int {
	n := outShape.NumElements()
	idx := make([]int, n)
	if inShape.NumElements() == 1 {
		return idx
	}

	offset := len(outShape) - len(inShape)
	inStrides := inShape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	for flat := range n {
		rem, src := flat, 0
		for d := range outShape {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			if j := d - offset; j >= 0 && inShape[j] != 1 {
				src += coord * inStrides[j]
			}
		}
		idx[flat] = src
	}
	return idx
}

// MulScalar multiplies x by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	cpu.check("mul_scalar", x)
	result := cpu.alloc(x.Shape())
	floats.ScaleTo(result.Data(), s, x.Data())
	return result
}

// AddScalar adds s to x.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	cpu.check("add_scalar", x)
	result := x.Clone()
	floats.AddConst(s, result.Data())
	return result
}

// Exp computes e^x.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x, math.Exp)
}

// Log computes the natural logarithm. log(0) is -Inf, as in IEEE 754.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log", x, math.Log)
}

// Clamp limits every element to [lo, hi].
func (cpu *CPUBackend) Clamp(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	return cpu.unary("clamp", x, func(v float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	})
}

func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	cpu.check(op, x)
	result := cpu.alloc(x.Shape())
	in, out := x.Data(), result.Data()
	parallel.Range(len(out), cpu.parallel, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = f(in[i])
		}
	})
	return result
}
