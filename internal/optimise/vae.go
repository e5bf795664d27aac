package optimise

import (
	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// VAEConfig configures a variational autoencoder optimiser.
type VAEConfig struct {
	// Loss is the reconstruction loss, always sum-reduced.
	Loss nn.LossKind
	// Beta weights the KL divergence.
	Beta float64
	LR   float64
	Rule optim.Optimizer
}

// DefaultVAEConfig returns MSE reconstruction, beta 1 and Adam at lr 5e-4.
func DefaultVAEConfig() VAEConfig {
	return VAEConfig{Loss: nn.MSE, Beta: 1, LR: 5e-4}
}

// VAE trains a variational autoencoder on reconstruction plus
// beta-weighted KL divergence to a unit Gaussian prior.
type VAE[B autodiff.BackwardCapable] struct {
	model   VAEModel[B]
	loss    nn.LossKind
	beta    float64
	rule    optim.Optimizer
	metrics *accumulate.CMA
}

// NewVAE creates a VAE optimiser for model. Beta is taken as given.
func NewVAE[B autodiff.BackwardCapable](model VAEModel[B], cfg VAEConfig) *VAE[B] {
	if cfg.LR == 0 {
		cfg.LR = DefaultVAEConfig().LR
	}
	return &VAE[B]{
		model:   model,
		loss:    cfg.Loss,
		beta:    cfg.Beta,
		rule:    defaultRule(cfg.Rule, model.Parameters(), cfg.LR),
		metrics: accumulate.NewCMA("loss", "kld_loss", cfg.Loss.String()),
	}
}

// Step encodes batch[0] and reconstructs the last batch tensor, which is
// batch[0] itself when only one tensor is given.
func (o *VAE[B]) Step(batch ...*tensor.Tensor[B]) {
	x := batchArg("VAE", batch, 0)
	target := batch[len(batch)-1].To(o.model.Device())
	defer record(x)()

	o.rule.ZeroGrad()
	out := o.model.Forward(x)
	kl, recon := o.Loss(out, target)
	loss := kl.Add(recon)
	o.metrics.Push(loss.Item(), kl.Item(), recon.Item())
	backward(loss, autodiff.Release, o.model.Parameters())
	o.rule.Step()
}

// Loss returns the KL and reconstruction terms for a forward pass.
// Both are summed over every element.
func (o *VAE[B]) Loss(out VAEOutput[B], target *tensor.Tensor[B]) (kl, recon *tensor.Tensor[B]) {
	kl = kld(out.Mean, out.LogVar, o.beta).Sum()
	recon = nn.Loss(o.loss, out.Recon, target, nn.Sum)
	return kl, recon
}

// Metrics returns running means of loss, kld_loss and the reconstruction loss.
func (o *VAE[B]) Metrics() accumulate.Accumulator {
	return o.metrics
}

// Info describes the optimiser.
func (o *VAE[B]) Info() map[string]any {
	return map[string]any{
		"model":     modelName(o.model),
		"loss":      o.loss.String(),
		"optimiser": o.rule.String(),
		"beta":      o.beta,
	}
}
