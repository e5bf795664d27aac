package tensor

import "math/rand/v2"

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return New(MustRaw(shape, b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[B] {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with value.
func Full[B Backend](shape Shape, value float64, b B) *Tensor[B] {
	raw := MustRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = value
	}
	return New(raw, b)
}

// Scalar creates a 0-dimensional tensor holding v.
func Scalar[B Backend](v float64, b B) *Tensor[B] {
	return Full(Shape{}, v, b)
}

// Randn creates a tensor of standard normal samples N(0, 1) drawn from rng.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	raw := MustRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return New(raw, b)
}

// Rand creates a tensor of uniform samples in [0, 1) drawn from rng.
func Rand[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	raw := MustRaw(shape, b.Device())
	data := raw.Data()
	for i := range data {
		data[i] = rng.Float64()
	}
	return New(raw, b)
}
