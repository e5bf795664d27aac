package cpu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyworld-ml/pyworld/internal/parallel"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

func raw(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.RawFromSlice(data, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return r
}

func TestBinary(t *testing.T) {
	cpu := New()
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{4, 3, 2, 1}, 2, 2)

	assert.Equal(t, []float64{5, 5, 5, 5}, cpu.Add(a, b).Data())
	assert.Equal(t, []float64{-3, -1, 1, 3}, cpu.Sub(a, b).Data())
	assert.Equal(t, []float64{4, 6, 6, 4}, cpu.Mul(a, b).Data())
	assert.Equal(t, []float64{0.25, 2.0 / 3, 1.5, 4}, cpu.Div(a, b).Data())
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data(), "inputs are not written")
}

func TestBinary_Broadcast(t *testing.T) {
	cpu := New()
	m := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	row := raw(t, []float64{10, 20, 30}, 3)
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, cpu.Add(m, row).Data())

	col := raw(t, []float64{1, 2}, 2, 1)
	out := cpu.Mul(col, m)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float64{1, 2, 3, 8, 10, 12}, out.Data())

	scalar := raw(t, []float64{2}, 1)
	assert.Equal(t, []float64{0.5, 1, 1.5, 2, 2.5, 3}, cpu.Div(m, scalar).Data())
}

func TestBinary_Panics(t *testing.T) {
	cpu := New()
	a := raw(t, []float64{1, 2, 3}, 3)
	b := raw(t, []float64{1, 2}, 2)

	assertPanicIs(t, tensor.ErrShapeMismatch, func() { cpu.Add(a, b) })
	assertPanicIs(t, tensor.ErrDeviceMismatch, func() { cpu.Add(a, a.To(tensor.Metal)) })
}

func TestMatMul(t *testing.T) {
	cpu := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := raw(t, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	out := cpu.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())

	assertPanicIs(t, tensor.ErrShapeMismatch, func() { cpu.MatMul(a, a) })
	assertPanicIs(t, tensor.ErrShapeMismatch, func() { cpu.MatMul(raw(t, []float64{1}, 1), b) })
}

func TestTransposeReshape(t *testing.T) {
	cpu := New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	tr := cpu.Transpose(a)
	assert.Equal(t, tensor.Shape{3, 2}, tr.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, tr.Data())

	r := cpu.Reshape(a, tensor.Shape{3, 2})
	r.Data()[0] = 100
	assert.Equal(t, 1.0, a.Data()[0], "Reshape copies")
}

func TestScalarAndUnary(t *testing.T) {
	cpu := New()
	x := raw(t, []float64{-2, 0, 2}, 3)

	assert.Equal(t, []float64{-6, 0, 6}, cpu.MulScalar(x, 3).Data())
	assert.Equal(t, []float64{-1, 1, 3}, cpu.AddScalar(x, 1).Data())
	assert.Equal(t, []float64{0, 0, 2}, cpu.ReLU(x).Data())
	assert.Equal(t, []float64{-1, 0, 1}, cpu.Clamp(x, -1, 1).Data())
	assert.InDeltaSlice(t, []float64{math.Exp(-2), 1, math.Exp(2)}, cpu.Exp(x).Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{math.Tanh(-2), 0, math.Tanh(2)}, cpu.Tanh(x).Data(), 1e-12)
	assert.InDelta(t, 0.5, cpu.Sigmoid(x).Data()[1], 1e-12)
	assert.InDelta(t, math.Log(2), cpu.Softplus(x).Data()[1], 1e-12)

	logs := cpu.Log(raw(t, []float64{0, 1}, 2)).Data()
	assert.True(t, math.IsInf(logs[0], -1))
	assert.Equal(t, 0.0, logs[1])
}

func TestSigmoidSoftplus_Extremes(t *testing.T) {
	cpu := New()
	x := raw(t, []float64{-1000, 1000}, 2)

	assert.Equal(t, []float64{0, 1}, cpu.Sigmoid(x).Data())
	sp := cpu.Softplus(x).Data()
	assert.Equal(t, 0.0, sp[0])
	assert.Equal(t, 1000.0, sp[1])
}

func TestReductions(t *testing.T) {
	cpu := New()
	x := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	s := cpu.Sum(x)
	assert.Empty(t, s.Shape())
	assert.Equal(t, 21.0, s.Item())

	rows := cpu.SumDim(x, 1, false)
	assert.Equal(t, tensor.Shape{2}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Data())

	cols := cpu.SumDim(x, 0, true)
	assert.Equal(t, tensor.Shape{1, 3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())

	last := cpu.SumDim(x, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, last.Shape())

	assertPanicIs(t, tensor.ErrInvalidShape, func() { cpu.SumDim(x, 2, false) })
}

func TestParallelMatchesSequential(t *testing.T) {
	par := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8})
	seq := NewWithConfig(parallel.Sequential())

	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i%17) - 8
	}
	x := raw(t, data, 100, 10)
	row := raw(t, data[:10], 10)

	assert.Equal(t, seq.Tanh(x).Data(), par.Tanh(x).Data())
	assert.Equal(t, seq.Sub(x, row).Data(), par.Sub(x, row).Data())
}

func assertPanicIs(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "panic %v is not %v", err, target)
	}()
	f()
}
