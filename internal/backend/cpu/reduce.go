package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Sum reduces every element of x to a scalar (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	cpu.check("sum", x)
	result := cpu.alloc(tensor.Shape{})
	result.Data()[0] = floats.Sum(x.Data())
	return result
}

// SumDim reduces x along dim. Negative dims count from the end.
//
// With keepDim the reduced axis stays with size 1, otherwise it is removed.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	cpu.check("sum_dim", x)
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Errorf("sum_dim: %w: dim %d out of range for %v", tensor.ErrInvalidShape, dim, shape))
	}

	outer, inner := 1, 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	n := shape[dim]

	outShape := make(tensor.Shape, 0, len(shape))
	outShape = append(outShape, shape[:dim]...)
	if keepDim {
		outShape = append(outShape, 1)
	}
	outShape = append(outShape, shape[dim+1:]...)

	result := cpu.alloc(outShape)
	src, dst := x.Data(), result.Data()
	for o := range outer {
		for k := range n {
			row := src[(o*n+k)*inner : (o*n+k+1)*inner]
			floats.Add(dst[o*inner:(o+1)*inner], row)
		}
	}
	return result
}
