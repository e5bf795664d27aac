package optim_test

import (
	"math"
	"testing"

	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/backend/cpu"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// scalarParam returns a one-element parameter holding v with gradient g.
func scalarParam(t *testing.T, backend Backend, v, g float64) *nn.Parameter[Backend] {
	t.Helper()
	x, err := tensor.FromSlice([]float64{v}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	p := nn.NewParameter("x", x)
	setGrad(t, p, g)
	return p
}

func setGrad(t *testing.T, p *nn.Parameter[Backend], g float64) {
	t.Helper()
	p.ZeroGrad()
	grad, err := tensor.RawFromSlice([]float64{g}, tensor.Shape{1}, tensor.CPU)
	require.NoError(t, err)
	p.AccumulateGrad(grad)
}

func TestSGD_SimpleUpdate(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 2.0, 1.0)

	opt := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1})
	opt.Step()

	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-12)
}

func TestSGD_WithMomentum(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1.0, 1.0)

	opt := optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	opt.Step()
	// velocity = 1, x = 1 - 0.1
	assert.InDelta(t, 0.9, param.Tensor().Item(), 1e-12)

	setGrad(t, param, 1.0)
	opt.Step()
	// velocity = 0.9 + 1, x = 0.9 - 0.19
	assert.InDelta(t, 0.71, param.Tensor().Item(), 1e-12)
}

func TestSGD_InvalidMomentum(t *testing.T) {
	assert.Panics(t, func() {
		optim.NewSGD[Backend](nil, optim.SGDConfig{Momentum: 1})
	})
}

func TestAdam_FirstStep(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1.0, 0.5)

	opt := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{LR: 0.01})
	opt.Step()

	// After bias correction the first step moves by lr * g/|g|.
	assert.InDelta(t, 1.0-0.01, param.Tensor().Item(), 1e-6)
}

func TestAdam_Defaults(t *testing.T) {
	opt := optim.NewAdam[Backend](nil, optim.AdamConfig{})
	assert.InDelta(t, 0.001, opt.LR(), 1e-15)
	assert.Equal(t, "Adam(lr=0.001, betas=(0.9, 0.999), eps=1e-08)", opt.String())

	opt.SetLR(5e-4)
	assert.InDelta(t, 5e-4, opt.LR(), 1e-15)
}

func TestAdam_SkipsParamsWithoutGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 3.0, 0)
	param.ZeroGrad()

	opt := optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{})
	opt.Step()
	assert.InDelta(t, 3.0, param.Tensor().Item(), 1e-15)
}

func TestRMSProp_Update(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1.0, 2.0)

	opt := optim.NewRMSProp([]*nn.Parameter[Backend]{param}, optim.RMSPropConfig{LR: 0.1, Alpha: 0.9, Eps: 1e-8})
	opt.Step()

	// v = 0.1 * 4 = 0.4, step = 2 / sqrt(0.4)
	want := 1.0 - 0.1*2/(math.Sqrt(0.4)+1e-8)
	assert.InDelta(t, want, param.Tensor().Item(), 1e-12)

	setGrad(t, param, 2.0)
	opt.Step()
	// v = 0.9*0.4 + 0.1*4 = 0.76
	want -= 0.1 * 2 / (math.Sqrt(0.76) + 1e-8)
	assert.InDelta(t, want, param.Tensor().Item(), 1e-12)
}

func TestRMSProp_Defaults(t *testing.T) {
	cfg := optim.DefaultRMSPropConfig()
	assert.InDelta(t, 0.99, cfg.Alpha, 1e-15)

	opt := optim.NewRMSProp[Backend](nil, optim.RMSPropConfig{LR: 3e-4, Alpha: 0.9})
	assert.Equal(t, "RMSprop(lr=0.0003, alpha=0.9, eps=1e-08, momentum=0)", opt.String())
}

func TestOptimizer_ZeroGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1.0, 1.0)

	for _, opt := range []optim.Optimizer{
		optim.NewSGD([]*nn.Parameter[Backend]{param}, optim.SGDConfig{}),
		optim.NewAdam([]*nn.Parameter[Backend]{param}, optim.AdamConfig{}),
		optim.NewRMSProp([]*nn.Parameter[Backend]{param}, optim.RMSPropConfig{}),
	} {
		setGrad(t, param, 1.0)
		opt.ZeroGrad()
		assert.Nil(t, param.Grad(), opt.String())
	}
}

// Updates replace the parameter storage, so a retained graph still sees
// the forward-time value.
func TestStep_KeepsRecordedValues(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x, err := tensor.FromSlice([]float64{3}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("x", x)
	params := []*nn.Parameter[Backend]{param}
	opt := optim.NewSGD(params, optim.SGDConfig{LR: 0.1})

	backend.Tape().StartRecording()
	defer backend.Tape().Release()
	loss := param.Tensor().Square().Sum()

	nn.AccumulateGrads(params, autodiff.Backward(loss, autodiff.Retain))
	opt.Step()
	assert.InDelta(t, 2.4, param.Tensor().Item(), 1e-12)
	assert.InDelta(t, 3.0, x.Item(), 1e-12)

	grads := autodiff.Backward(loss, autodiff.Release)
	assert.InDeltaSlice(t, []float64{6}, grads.Of(x.Raw()).Data(), 1e-12)
}

func TestTrainingLoop_Converges(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x, err := tensor.FromSlice([]float64{5, -3}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("x", x)
	params := []*nn.Parameter[Backend]{param}
	opt := optim.NewAdam(params, optim.AdamConfig{LR: 0.1})

	for range 300 {
		backend.Tape().StartRecording()
		loss := param.Tensor().Square().Sum()
		opt.ZeroGrad()
		nn.AccumulateGrads(params, autodiff.Backward(loss, autodiff.Release))
		opt.Step()
	}

	for _, v := range param.Tensor().Data() {
		assert.InDelta(t, 0, v, 0.1)
	}
}
