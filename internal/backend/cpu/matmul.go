package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// MatMul multiplies two 2D tensors: [M, K] @ [K, N] -> [M, N].
//
// The operands are wrapped as gonum Dense matrices without copying and the
// product is written straight into the result buffer.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	cpu.check("matmul", a, b)
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Errorf("matmul: %w: expected 2D operands, got %v and %v", tensor.ErrShapeMismatch, as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Errorf("matmul: %w: inner dimensions differ, %v @ %v", tensor.ErrShapeMismatch, as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	result := cpu.alloc(tensor.Shape{m, n})

	lhs := mat.NewDense(m, k, a.Data())
	rhs := mat.NewDense(k, n, b.Data())
	out := mat.NewDense(m, n, result.Data())
	out.Mul(lhs, rhs)

	return result
}

// Transpose swaps the axes of a 2D tensor.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	cpu.check("transpose", t)
	s := t.Shape()
	if len(s) != 2 {
		panic(fmt.Errorf("transpose: %w: expected 2D tensor, got %v", tensor.ErrShapeMismatch, s))
	}

	rows, cols := s[0], s[1]
	result := cpu.alloc(tensor.Shape{cols, rows})
	src, dst := t.Data(), result.Data()
	for i := range rows {
		for j := range cols {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}

// Reshape returns a copy of t with a new shape of equal size.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	cpu.check("reshape", t)
	return t.Clone().WithShape(newShape)
}
