package optimise_test

import (
	"math"
	"testing"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeros(int) float64 { return 0 }

func TestAE_ZeroBatch(t *testing.T) {
	tests := []struct {
		name      string
		loss      nn.LossKind
		reduction nn.Reduction
		want      float64
	}{
		{"mse", nn.MSE, nn.Mean, 0},
		{"bce with logits mean", nn.BCEWithLogits, nn.Mean, -math.Log(0.5)},
		{"bce with logits sum", nn.BCEWithLogits, nn.Sum, -math.Log(0.5) * 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			model := &scaleAE{w: param(t, b, "w", tensor.Shape{1}, 0)}
			opt := optimise.NewAE[Backend](model, optimise.AEConfig{Loss: tt.loss, Reduction: tt.reduction})

			opt.Step(batch(t, b, tensor.Shape{2, 3}, zeros))

			assert.Equal(t, 1, opt.Metrics().Count())
			assert.InDelta(t, tt.want, opt.Metrics().Get("loss"), 1e-12)
		})
	}
}

func TestAE_Learns(t *testing.T) {
	b := newBackend()
	model := &scaleAE{w: param(t, b, "w", tensor.Shape{1}, 0.2)}
	opt := optimise.NewAE[Backend](model, optimise.AEConfig{
		Loss: nn.MSE,
		Rule: optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.5}),
	})

	x := batch(t, b, tensor.Shape{4, 2}, func(i int) float64 { return float64(i%3) - 1 })
	for range 50 {
		opt.Step(x)
	}
	assert.InDelta(t, 1.0, model.w.Tensor().Item(), 1e-3)
	assert.True(t, b.Tape().IsReleased())
}

func TestAE_ShapeMismatchPanics(t *testing.T) {
	b := newBackend()
	model := &badShapeAE{scaleAE{w: param(t, b, "w", tensor.Shape{1}, 1)}}
	opt := optimise.NewAE[Backend](model, optimise.DefaultAEConfig())

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
	}()
	opt.Step(batch(t, b, tensor.Shape{2, 3}, zeros))
}

// badShapeAE returns a reconstruction with its axes swapped.
type badShapeAE struct{ scaleAE }

func (m *badShapeAE) Forward(x *tensor.Tensor[Backend]) *tensor.Tensor[Backend] {
	return m.scaleAE.Forward(x).Transpose()
}

func TestAE_Info(t *testing.T) {
	b := newBackend()
	model := &scaleAE{w: param(t, b, "w", tensor.Shape{1}, 0)}
	opt := optimise.NewAE[Backend](model, optimise.AEConfig{Loss: nn.BCEWithLogits})

	info := opt.Info()
	assert.Equal(t, "scaleAE", info["model"])
	assert.Equal(t, "binary_cross_entropy_with_logits", info["loss"])
	assert.Equal(t, "Adam(lr=0.0005, betas=(0.9, 0.999), eps=1e-08)", info["optimiser"])
}

func TestAE_EmptyBatchPanics(t *testing.T) {
	b := newBackend()
	model := &scaleAE{w: param(t, b, "w", tensor.Shape{1}, 0)}
	opt := optimise.NewAE[Backend](model, optimise.DefaultAEConfig())
	assert.Panics(t, func() { opt.Step() })
}

func TestBCE_Step(t *testing.T) {
	b := newBackend()
	model := &scaleAE{w: param(t, b, "w", tensor.Shape{1}, 0)}
	opt := optimise.NewBCE[Backend](model, optimise.DefaultBCEConfig())

	x := batch(t, b, tensor.Shape{4, 1}, func(i int) float64 { return float64(i) - 1.5 })
	y := batch(t, b, tensor.Shape{4, 1}, func(i int) float64 {
		if i >= 2 {
			return 1
		}
		return 0
	})
	opt.Step(x, y)

	// Zero weight means every logit is 0.
	assert.InDelta(t, math.Log(2), opt.Metrics().Get("loss"), 1e-12)
	assert.Greater(t, model.w.Tensor().Item(), 0.0)
	assert.Equal(t, "binary_cross_entropy_with_logits", opt.Info()["loss"])

	assert.Panics(t, func() { opt.Step(x) })
}

func TestFunc_Step(t *testing.T) {
	b := newBackend()
	model := &scaleAE{w: param(t, b, "w", tensor.Shape{1}, 3)}
	opt := optimise.NewFunc[Backend](model, func(batch ...*tensor.Tensor[Backend]) *tensor.Tensor[Backend] {
		return model.Forward(batch[0]).Square().Mean()
	}, optimise.FuncConfig{Rule: optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})})

	opt.Step(batch(t, b, tensor.Shape{1, 1}, func(int) float64 { return 1 }))

	assert.InDelta(t, 9, opt.Metrics().Get("loss"), 1e-12)
	// d/dw w² = 6
	assert.InDelta(t, 2.4, model.w.Tensor().Item(), 1e-12)
	assert.Equal(t, "SGD(lr=0.1, momentum=0)", opt.Info()["optimiser"])
}
