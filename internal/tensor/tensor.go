// Package tensor provides the core tensor types and operations.
package tensor

import "fmt"

// Tensor is a float64 tensor bound to a backend B.
//
// Every operation is dispatched to B, so wrapping a backend with
// autodiff.New makes the same code record a gradient tape.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
//	result := t.Add(t)
type Tensor[B Backend] struct {
	raw     *RawTensor
	backend B
}

// New creates a Tensor from a RawTensor and backend.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return &Tensor[B]{raw: raw, backend: b}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[B Backend](data []float64, shape Shape, b B) (*Tensor[B], error) {
	raw, err := RawFromSlice(data, shape, b.Device())
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// Shape returns the tensor's shape.
func (t *Tensor[B]) Shape() Shape {
	return t.raw.Shape()
}

// Device returns the tensor's compute device.
func (t *Tensor[B]) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor[B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor[B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor[B]) Backend() B {
	return t.backend
}

// Data returns the underlying buffer.
func (t *Tensor[B]) Data() []float64 {
	return t.raw.Data()
}

// Item returns the value of a one-element tensor.
func (t *Tensor[B]) Item() float64 {
	return t.raw.Item()
}

// Detach returns a tensor holding a copy of t's values that no recorded
// operation refers to, so no gradient flows through it.
func (t *Tensor[B]) Detach() *Tensor[B] {
	return New(t.raw.Clone(), t.backend)
}

// To relocates t to device d. The result is not part of the gradient graph.
func (t *Tensor[B]) To(d Device) *Tensor[B] {
	return New(t.raw.To(d), t.backend)
}

// String implements fmt.Stringer.
func (t *Tensor[B]) String() string {
	return fmt.Sprintf("Tensor(shape=%v, device=%s, backend=%s)", t.Shape(), t.Device(), t.backend.Name())
}
