package tensor

import "fmt"

func (t *Tensor[B]) binary(name string, other *Tensor[B], op func(a, b *RawTensor) *RawTensor) *Tensor[B] {
	if t.Device() != other.Device() {
		panic(fmt.Errorf("%s: %w: %s and %s", name, ErrDeviceMismatch, t.Device(), other.Device()))
	}
	return New(op(t.raw, other.raw), t.backend)
}

// Add performs element-wise addition with broadcasting.
func (t *Tensor[B]) Add(other *Tensor[B]) *Tensor[B] {
	return t.binary("add", other, t.backend.Add)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[B]) Sub(other *Tensor[B]) *Tensor[B] {
	return t.binary("sub", other, t.backend.Sub)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[B]) Mul(other *Tensor[B]) *Tensor[B] {
	return t.binary("mul", other, t.backend.Mul)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[B]) Div(other *Tensor[B]) *Tensor[B] {
	return t.binary("div", other, t.backend.Div)
}

// MatMul performs 2D matrix multiplication.
func (t *Tensor[B]) MatMul(other *Tensor[B]) *Tensor[B] {
	return t.binary("matmul", other, t.backend.MatMul)
}

// Transpose swaps the two axes of a 2D tensor.
func (t *Tensor[B]) Transpose() *Tensor[B] {
	return New(t.backend.Transpose(t.raw), t.backend)
}

// Reshape returns a tensor with the same data and a new shape.
// One dimension may be -1, in which case it is inferred.
func (t *Tensor[B]) Reshape(dims ...int) *Tensor[B] {
	shape := make(Shape, len(dims))
	infer, known := -1, 1
	for i, d := range dims {
		if d == -1 {
			if infer >= 0 {
				panic(fmt.Errorf("reshape: %w: more than one -1 in %v", ErrInvalidShape, dims))
			}
			infer = i
			continue
		}
		shape[i] = d
		known *= d
	}
	if infer >= 0 {
		if known == 0 || t.NumElements()%known != 0 {
			panic(fmt.Errorf("reshape: %w: cannot infer -1 for %v from %v", ErrShapeMismatch, dims, t.Shape()))
		}
		shape[infer] = t.NumElements() / known
	}
	return New(t.backend.Reshape(t.raw, shape), t.backend)
}

// Flatten reshapes a tensor to [batch, -1], keeping the leading dimension.
func (t *Tensor[B]) Flatten() *Tensor[B] {
	return t.Reshape(t.Shape()[0], -1)
}

// MulScalar multiplies every element by s.
func (t *Tensor[B]) MulScalar(s float64) *Tensor[B] {
	return New(t.backend.MulScalar(t.raw, s), t.backend)
}

// AddScalar adds s to every element.
func (t *Tensor[B]) AddScalar(s float64) *Tensor[B] {
	return New(t.backend.AddScalar(t.raw, s), t.backend)
}

// Neg negates every element.
func (t *Tensor[B]) Neg() *Tensor[B] {
	return t.MulScalar(-1)
}

// Square multiplies t with itself element-wise.
func (t *Tensor[B]) Square() *Tensor[B] {
	return t.Mul(t)
}

// Exp computes e^x element-wise.
func (t *Tensor[B]) Exp() *Tensor[B] {
	return New(t.backend.Exp(t.raw), t.backend)
}

// Log computes the natural logarithm element-wise.
func (t *Tensor[B]) Log() *Tensor[B] {
	return New(t.backend.Log(t.raw), t.backend)
}

// Clamp limits every element to [lo, hi].
func (t *Tensor[B]) Clamp(lo, hi float64) *Tensor[B] {
	return New(t.backend.Clamp(t.raw, lo, hi), t.backend)
}

// ReLU applies max(0, x) element-wise.
func (t *Tensor[B]) ReLU() *Tensor[B] {
	return New(t.backend.ReLU(t.raw), t.backend)
}

// Sigmoid applies 1 / (1 + e^-x) element-wise.
func (t *Tensor[B]) Sigmoid() *Tensor[B] {
	return New(t.backend.Sigmoid(t.raw), t.backend)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor[B]) Tanh() *Tensor[B] {
	return New(t.backend.Tanh(t.raw), t.backend)
}

// Softplus applies log(1 + e^x) element-wise.
func (t *Tensor[B]) Softplus() *Tensor[B] {
	return New(t.backend.Softplus(t.raw), t.backend)
}

// Sum reduces every element to a scalar.
func (t *Tensor[B]) Sum() *Tensor[B] {
	return New(t.backend.Sum(t.raw), t.backend)
}

// SumDim reduces along dim.
func (t *Tensor[B]) SumDim(dim int, keepDim bool) *Tensor[B] {
	return New(t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// Mean reduces every element to their scalar mean.
func (t *Tensor[B]) Mean() *Tensor[B] {
	return t.Sum().MulScalar(1 / float64(t.NumElements()))
}

// MeanDim averages along dim.
func (t *Tensor[B]) MeanDim(dim int, keepDim bool) *Tensor[B] {
	shape := t.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	return t.SumDim(dim, keepDim).MulScalar(1 / float64(shape[dim]))
}
