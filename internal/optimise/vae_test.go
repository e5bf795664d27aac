package optimise_test

import (
	"testing"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func newFixedVAE(t *testing.T, b Backend, mu, logVar float64) *fixedVAE {
	return &fixedVAE{
		w:      param(t, b, "w", tensor.Shape{1}, 0.5),
		mu:     param(t, b, "mu", tensor.Shape{1, 2}, mu, mu),
		logVar: param(t, b, "logvar", tensor.Shape{1, 2}, logVar, logVar),
	}
}

func ramp(i int) float64 { return float64(i) / 10 }

func TestVAE_ZeroLatentHasNoKL(t *testing.T) {
	for _, beta := range []float64{0, 0.5, 1, 4} {
		b := newBackend()
		model := newFixedVAE(t, b, 0, 0)
		opt := optimise.NewVAE[Backend](model, optimise.VAEConfig{Loss: nn.MSE, Beta: beta})

		opt.Step(batch(t, b, tensor.Shape{3, 4}, ramp))

		assert.Equal(t, 0.0, opt.Metrics().Get("kld_loss"), "beta=%g", beta)
	}
}

func TestVAE_BetaScalesOnlyKL(t *testing.T) {
	run := func(beta float64) (total, kl, recon float64) {
		b := newBackend()
		model := newFixedVAE(t, b, 0.5, 0.2)
		opt := optimise.NewVAE[Backend](model, optimise.VAEConfig{Loss: nn.MSE, Beta: beta})
		opt.Step(batch(t, b, tensor.Shape{3, 4}, ramp))
		m := opt.Metrics()
		return m.Get("loss"), m.Get("kld_loss"), m.Get("mse_loss")
	}

	total1, kl1, recon1 := run(1)
	total2, kl2, recon2 := run(2)

	assert.Greater(t, kl1, 0.0)
	assert.InDelta(t, 2*kl1, kl2, 1e-12)
	assert.InDelta(t, recon1, recon2, 1e-12)
	assert.InDelta(t, total1+kl1, total2, 1e-12)
}

func TestVAE_Loss(t *testing.T) {
	b := newBackend()
	model := newFixedVAE(t, b, 1, 0)
	opt := optimise.NewVAE[Backend](model, optimise.DefaultVAEConfig())

	x := batch(t, b, tensor.Shape{2, 3}, func(int) float64 { return 1 })
	kl, recon := opt.Loss(model.Forward(x), x)

	// Per element: -0.5 * (1 + 0 - 1 - 1) = 0.5, over 2x2 latent elements.
	assert.InDelta(t, 2.0, kl.Item(), 1e-12)
	// Sum reduction: 6 elements of (0.5 - 1)².
	assert.InDelta(t, 1.5, recon.Item(), 1e-12)
}

func TestVAE_SeparateTarget(t *testing.T) {
	b := newBackend()
	model := newFixedVAE(t, b, 0, 0)
	opt := optimise.NewVAE[Backend](model, optimise.VAEConfig{Loss: nn.MSE, Beta: 1})

	x := batch(t, b, tensor.Shape{1, 2}, func(int) float64 { return 2 })
	target := batch(t, b, tensor.Shape{1, 2}, zeros)
	opt.Step(x, target)

	// Reconstruction 0.5*2 = 1 against target 0.
	assert.InDelta(t, 2.0, opt.Metrics().Get("mse_loss"), 1e-12)
	assert.Equal(t, []string{"loss", "kld_loss", "mse_loss"}, opt.Metrics().Labels())
}

func TestVAE_Info(t *testing.T) {
	b := newBackend()
	opt := optimise.NewVAE[Backend](newFixedVAE(t, b, 0, 0), optimise.VAEConfig{Loss: nn.BCEWithLogits, Beta: 2})

	info := opt.Info()
	assert.Equal(t, "fixedVAE", info["model"])
	assert.Equal(t, 2.0, info["beta"])
	assert.Equal(t, "binary_cross_entropy_with_logits", info["loss"])
}
