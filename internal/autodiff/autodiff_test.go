package autodiff_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/backend/cpu"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

type backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() backend {
	return autodiff.New(cpu.New())
}

func fromSlice(t *testing.T, b backend, data []float64, shape ...int) *tensor.Tensor[backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), b)
	require.NoError(t, err)
	return x
}

// numericGrad estimates df/dx by central differences with the tape idle.
func numericGrad(b backend, f func(*tensor.Tensor[backend]) *tensor.Tensor[backend], x *tensor.Tensor[backend]) []float64 {
	const h = 1e-6
	base := x.Raw()
	grad := make([]float64, base.NumElements())
	for i := range grad {
		plus, minus := base.Clone(), base.Clone()
		plus.Data()[i] += h
		minus.Data()[i] -= h
		fp := f(tensor.New(plus, b)).Item()
		fm := f(tensor.New(minus, b)).Item()
		grad[i] = (fp - fm) / (2 * h)
	}
	return grad
}

func TestBackward_MatchesFiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 7))
	b := newBackend()
	w := tensor.Randn(tensor.Shape{3, 2}, rng, b)
	row := tensor.Randn(tensor.Shape{1, 3}, rng, b)
	pos := tensor.Rand(tensor.Shape{2, 3}, rng, b).AddScalar(0.5)

	tests := []struct {
		name string
		x    *tensor.Tensor[backend]
		f    func(x *tensor.Tensor[backend]) *tensor.Tensor[backend]
	}{
		{"add broadcast", tensor.Randn(tensor.Shape{2, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.Add(row).Square().Sum()
		}},
		{"broadcast operand", tensor.Randn(tensor.Shape{1, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return pos.Mul(x).Sum()
		}},
		{"sub", tensor.Randn(tensor.Shape{2, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return pos.Sub(x).Square().Mean()
		}},
		{"div", tensor.Randn(tensor.Shape{2, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.Div(pos).Sum().Add(pos.Div(x.Square().AddScalar(1)).Sum())
		}},
		{"matmul", tensor.Randn(tensor.Shape{4, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.MatMul(w).Tanh().Sum()
		}},
		{"transpose", tensor.Randn(tensor.Shape{3, 2}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return pos.MatMul(x.Transpose().Transpose()).Square().Sum()
		}},
		{"reshape", tensor.Randn(tensor.Shape{2, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.Reshape(3, -1).MatMul(x.Reshape(2, 3)).Sum()
		}},
		{"scalar ops", tensor.Randn(tensor.Shape{5}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.MulScalar(3).AddScalar(-1).Square().Sum()
		}},
		{"exp log", tensor.Rand(tensor.Shape{5}, rng, b).AddScalar(0.2), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.Exp().Add(x.Log()).Sum()
		}},
		{"sigmoid softplus", tensor.Randn(tensor.Shape{5}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.Sigmoid().Mul(x.Softplus()).Sum()
		}},
		{"sum dim", tensor.Randn(tensor.Shape{2, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.SumDim(1, true).Square().Sum().Add(x.SumDim(0, false).Exp().Sum())
		}},
		{"mean dim", tensor.Randn(tensor.Shape{2, 3}, rng, b), func(x *tensor.Tensor[backend]) *tensor.Tensor[backend] {
			return x.MeanDim(-1, false).Square().Sum()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.Tape().StartRecording()
			grads := autodiff.Backward(tt.f(tt.x), autodiff.Release)

			got := grads.Of(tt.x.Raw())
			require.NotNil(t, got)
			require.True(t, got.Shape().Equal(tt.x.Shape()), "grad shape %v for %v", got.Shape(), tt.x.Shape())
			assert.InDeltaSlice(t, numericGrad(b, tt.f, tt.x), got.Data(), 1e-4)
		})
	}
}

func TestBackward_PiecewiseOps(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, []float64{-2, -0.5, 0.5, 2}, 4)

	b.Tape().StartRecording()
	grads := autodiff.Backward(x.ReLU().Add(x.Clamp(-1, 1)).Sum(), autodiff.Release)

	// relu' + clamp' on each side of the kinks.
	assert.Equal(t, []float64{0, 1, 2, 1}, grads.Of(x.Raw()).Data())
}

func TestBackward_RetainAllowsSecondPass(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, []float64{1, 2, 3}, 3)

	b.Tape().StartRecording()
	h := x.Square()
	first := autodiff.Backward(h.Sum(), autodiff.Retain)
	require.False(t, b.Tape().IsReleased())

	second := autodiff.Backward(h.MulScalar(2).Sum(), autodiff.Release)
	assert.Equal(t, []float64{2, 4, 6}, first.Of(x.Raw()).Data())
	assert.Equal(t, []float64{4, 8, 12}, second.Of(x.Raw()).Data())
	assert.True(t, b.Tape().IsReleased())
	assert.Zero(t, b.Tape().NumOps())
}

func TestBackward_ReleasedGraphPanics(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, []float64{1, 2}, 2)

	b.Tape().StartRecording()
	loss := x.Square().Sum()
	autodiff.Backward(loss, autodiff.Release)

	assert.PanicsWithValue(t, autodiff.ErrGraphReleased, func() {
		autodiff.Backward(loss, autodiff.Release)
	})
}

func TestTape_RecordsOnlyWhileRecording(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, []float64{1, 2}, 2)

	_ = x.Add(x)
	assert.Zero(t, b.Tape().NumOps())

	b.Tape().StartRecording()
	_ = x.Add(x).Exp()
	assert.Equal(t, 2, b.Tape().NumOps())

	b.Tape().StopRecording()
	_ = x.Mul(x)
	assert.Equal(t, 2, b.Tape().NumOps())
	assert.False(t, b.Tape().IsRecording())

	b.Tape().StartRecording()
	assert.Zero(t, b.Tape().NumOps(), "StartRecording clears the previous graph")
}

func TestBackward_UnreachedTensorHasNoGradient(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, []float64{1, 2}, 2)
	y := fromSlice(t, b, []float64{3, 4}, 2)

	b.Tape().StartRecording()
	_ = y.Exp()
	grads := autodiff.Backward(x.Square().Sum(), autodiff.Release)

	assert.Nil(t, grads.Of(y.Raw()))
	assert.False(t, math.IsNaN(grads.Of(x.Raw()).Data()[0]))
}

func TestBackward_GradientsAreNotRecorded(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, []float64{1, 2, 3}, 3)

	b.Tape().StartRecording()
	loss := x.Mul(x).Sum()
	before := b.Tape().NumOps()
	autodiff.Backward(loss, autodiff.Retain)

	assert.Equal(t, before, b.Tape().NumOps())
	assert.True(t, b.Tape().IsRecording())
}
