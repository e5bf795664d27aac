package ops

import "github.com/pyworld-ml/pyworld/internal/tensor"

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	if targetShape.NumElements() == 1 {
		return backend.Reshape(backend.Sum(grad), targetShape)
	}

	// Leading dimensions that the target does not have are summed away.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Dimensions broadcast from size 1 are summed with the axis kept.
	for i, d := range targetShape {
		if d == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// broadcastTo expands grad to shape by adding it onto zeros.
func broadcastTo(grad *tensor.RawTensor, shape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(shape) {
		return grad
	}
	zeros := tensor.MustRaw(shape, grad.Device())
	return backend.Add(zeros, grad)
}

// mapGrad returns outputGrad[i] * f(i) for every element.
func mapGrad(outputGrad *tensor.RawTensor, f func(i int) float64) *tensor.RawTensor {
	result := tensor.MustRaw(outputGrad.Shape(), outputGrad.Device())
	out, g := result.Data(), outputGrad.Data()
	for i := range out {
		out[i] = g[i] * f(i)
	}
	return result
}
