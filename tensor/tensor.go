// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} is a 2x3 matrix, Shape{} is a scalar.
type Shape = tensor.Shape

// RawTensor is the low-level float64 buffer underneath a Tensor.
type RawTensor = tensor.RawTensor

// Tensor is a float64 tensor computed on backend B.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
type Tensor[B Backend] = tensor.Tensor[B]

// Errors wrapped by shape and device checks.
var (
	ErrShapeMismatch  = tensor.ErrShapeMismatch
	ErrDeviceMismatch = tensor.ErrDeviceMismatch
	ErrInvalidShape   = tensor.ErrInvalidShape
)

// NewRaw allocates a zeroed RawTensor.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, device)
}

// RawFromSlice wraps data in a RawTensor after checking it matches shape.
func RawFromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.RawFromSlice(data, shape, device)
}

// New binds raw to backend b.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return tensor.New(raw, b)
}

// FromSlice creates a tensor from data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
func FromSlice[B Backend](data []float64, shape Shape, b B) (*Tensor[B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[B] {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
func Full[B Backend](shape Shape, value float64, b B) *Tensor[B] {
	return tensor.Full(shape, value, b)
}

// Scalar creates a 0-dimensional tensor holding v.
func Scalar[B Backend](v float64, b B) *Tensor[B] {
	return tensor.Scalar(v, b)
}

// Randn creates a tensor of standard normal samples drawn from rng.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	return tensor.Randn(shape, rng, b)
}

// Rand creates a tensor of uniform [0, 1) samples drawn from rng.
func Rand[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	return tensor.Rand(shape, rng, b)
}
