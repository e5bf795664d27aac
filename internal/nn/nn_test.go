package nn_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/backend/cpu"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestParameter(t *testing.T) {
	backend := autodiff.New(cpu.New())

	data, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())

	g, err := tensor.RawFromSlice([]float64{0.1, 0.2, 0.3}, tensor.Shape{3}, tensor.CPU)
	require.NoError(t, err)
	param.AccumulateGrad(g)
	param.AccumulateGrad(g)
	assert.InDeltaSlice(t, []float64{0.2, 0.4, 0.6}, param.Grad().Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, g.Data(), 1e-12, "accumulation must not alias the pass gradient")

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestParameter_SetReplacesStorage(t *testing.T) {
	backend := autodiff.New(cpu.New())
	old := tensor.Ones(tensor.Shape{2}, backend)
	param := nn.NewParameter("p", old)

	replacement, err := tensor.RawFromSlice([]float64{5, 6}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)
	param.Set(replacement)

	assert.Equal(t, []float64{5, 6}, param.Tensor().Data())
	assert.Equal(t, []float64{1, 1}, old.Data())

	wrong := tensor.MustRaw(tensor.Shape{3}, tensor.CPU)
	assert.Panics(t, func() { param.Set(wrong) })
}

func TestAccumulateGrads(t *testing.T) {
	backend := autodiff.New(cpu.New())
	w := nn.NewParameter("w", tensor.Full(tensor.Shape{2}, 3, backend))
	unused := nn.NewParameter("unused", tensor.Ones(tensor.Shape{1}, backend))

	backend.Tape().StartRecording()
	loss := w.Tensor().Square().Sum()
	grads := autodiff.Backward(loss, autodiff.Release)

	params := []*nn.Parameter[Backend]{w, unused}
	nn.AccumulateGrads(params, grads)
	assert.InDeltaSlice(t, []float64{6, 6}, w.Grad().Data(), 1e-12)
	assert.Nil(t, unused.Grad())

	nn.ZeroGrad(params)
	assert.Nil(t, w.Grad())
	assert.Equal(t, 3, nn.NumParameters(params))
}

func TestLinear_Forward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	layer := nn.NewLinear(3, 2, newRNG(), backend)

	weight, err := tensor.RawFromSlice([]float64{1, 0, 0, 0, 1, 1}, tensor.Shape{2, 3}, tensor.CPU)
	require.NoError(t, err)
	bias, err := tensor.RawFromSlice([]float64{0.5, -0.5}, tensor.Shape{2}, tensor.CPU)
	require.NoError(t, err)
	layer.Weight().Set(weight)
	layer.Bias().Set(bias)

	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	y := layer.Forward(x)

	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.InDeltaSlice(t, []float64{1.5, 4.5, 4.5, 10.5}, y.Data(), 1e-12)
	assert.Len(t, layer.Parameters(), 2)
	assert.Equal(t, 3, layer.InFeatures())
	assert.Equal(t, 2, layer.OutFeatures())
}

func TestLinear_WrongFeatures(t *testing.T) {
	backend := autodiff.New(cpu.New())
	layer := nn.NewLinear(3, 2, newRNG(), backend)
	x := tensor.Zeros(tensor.Shape{1, 4}, backend)

	assert.PanicsWithError(t,
		"Linear.Forward: shape mismatch: expected input with 3 features, got 4",
		func() { layer.Forward(x) })
}

func TestLinear_Gradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	layer := nn.NewLinear(2, 1, newRNG(), backend)

	backend.Tape().StartRecording()
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	loss := layer.Forward(x).Sum()
	grads := autodiff.Backward(loss, autodiff.Release)

	nn.AccumulateGrads(layer.Parameters(), grads)
	// d/dW of sum(xWᵀ + b) is the column sum of x; d/db is the batch size.
	assert.InDeltaSlice(t, []float64{4, 6}, layer.Weight().Grad().Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{2}, layer.Bias().Grad().Data(), 1e-12)
}

func TestXavier_Bounds(t *testing.T) {
	backend := cpu.New()
	w := nn.Xavier(10, 20, tensor.Shape{20, 10}, newRNG(), backend)
	bound := math.Sqrt(6.0 / 30.0)
	for _, v := range w.Data() {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}
}

func TestSequential(t *testing.T) {
	backend := autodiff.New(cpu.New())
	rng := newRNG()
	model := nn.NewSequential[Backend](
		nn.NewLinear(4, 3, rng, backend),
		nn.NewReLU[Backend](),
		nn.NewLinear(3, 2, rng, backend),
		nn.NewSigmoid[Backend](),
	)

	assert.Equal(t, 4, model.Len())
	assert.Len(t, model.Parameters(), 4)

	y := model.Forward(tensor.Ones(tensor.Shape{5, 4}, backend))
	assert.Equal(t, tensor.Shape{5, 2}, y.Shape())
	for _, v := range y.Data() {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Panics(t, func() { model.Module(4) })
}

func TestSequential_StateDictRoundTrip(t *testing.T) {
	backend := autodiff.New(cpu.New())
	src := nn.NewSequential[Backend](
		nn.NewLinear(2, 3, rand.New(rand.NewPCG(1, 1)), backend),
		nn.NewTanh[Backend](),
		nn.NewLinear(3, 1, rand.New(rand.NewPCG(1, 1)), backend),
	)
	dst := nn.NewSequential[Backend](
		nn.NewLinear(2, 3, rand.New(rand.NewPCG(9, 9)), backend),
		nn.NewTanh[Backend](),
		nn.NewLinear(3, 1, rand.New(rand.NewPCG(9, 9)), backend),
	)

	sd := src.StateDict()
	assert.Len(t, sd, 4)
	assert.Contains(t, sd, "0.weight")
	assert.Contains(t, sd, "2.bias")

	require.NoError(t, dst.LoadStateDict(sd))
	for i, p := range dst.Parameters() {
		assert.Equal(t, src.Parameters()[i].Tensor().Data(), p.Tensor().Data())
	}

	delete(sd, "2.weight")
	err := dst.LoadStateDict(sd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load module 2")
}

func TestLoss_MSE(t *testing.T) {
	backend := cpu.New()
	pred, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	target, _ := tensor.FromSlice([]float64{1, 0, 3, 2}, tensor.Shape{2, 2}, backend)

	assert.InDelta(t, 2.0, nn.Loss(nn.MSE, pred, target, nn.Mean).Item(), 1e-12)
	assert.InDelta(t, 8.0, nn.Loss(nn.MSE, pred, target, nn.Sum).Item(), 1e-12)
	assert.InDelta(t, 2.0, nn.MSELoss(pred, target).Item(), 1e-12)
}

func TestLoss_BCEWithLogitsAtZero(t *testing.T) {
	backend := cpu.New()
	logits := tensor.Zeros(tensor.Shape{3, 4}, backend)
	target := tensor.Zeros(tensor.Shape{3, 4}, backend)

	assert.InDelta(t, -math.Log(0.5), nn.Loss(nn.BCEWithLogits, logits, target, nn.Mean).Item(), 1e-12)
	assert.InDelta(t, -math.Log(0.5)*12, nn.Loss(nn.BCEWithLogits, logits, target, nn.Sum).Item(), 1e-12)
}

func TestLoss_BCEMatchesLogits(t *testing.T) {
	backend := cpu.New()
	logits, _ := tensor.FromSlice([]float64{-2, -0.5, 0.3, 4}, tensor.Shape{4}, backend)
	target, _ := tensor.FromSlice([]float64{0, 1, 1, 0}, tensor.Shape{4}, backend)

	withLogits := nn.BCEWithLogitsLoss(logits, target).Item()
	onProbs := nn.BCELoss(logits.Sigmoid(), target).Item()
	assert.InDelta(t, withLogits, onProbs, 1e-9)
}

func TestLoss_BCEFloorsLog(t *testing.T) {
	backend := cpu.New()
	p, _ := tensor.FromSlice([]float64{0}, tensor.Shape{1}, backend)
	y, _ := tensor.FromSlice([]float64{1}, tensor.Shape{1}, backend)

	assert.InDelta(t, 100.0, nn.BCELoss(p, y).Item(), 1e-9)
}

func TestLoss_ShapeMismatch(t *testing.T) {
	backend := cpu.New()
	a := tensor.Zeros(tensor.Shape{2, 3}, backend)
	b := tensor.Zeros(tensor.Shape{3, 2}, backend)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	}()
	nn.Loss(nn.MSE, a, b, nn.Mean)
}

func TestLossKind(t *testing.T) {
	tests := []struct {
		in   string
		want nn.LossKind
	}{
		{"mse", nn.MSE},
		{"mse_loss", nn.MSE},
		{"BCE", nn.BCE},
		{"bce_logits", nn.BCEWithLogits},
		{"binary_cross_entropy_with_logits", nn.BCEWithLogits},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := nn.ParseLossKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := nn.ParseLossKind("hinge")
	assert.Error(t, err)
	assert.Equal(t, "binary_cross_entropy", nn.BCE.String())
	assert.Equal(t, "sum", nn.Sum.String())
}
