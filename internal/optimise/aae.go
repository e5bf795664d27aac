package optimise

import (
	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// AAEConfig configures an adversarial autoencoder optimiser.
// Start from DefaultAAEConfig: Beta and Logits are used as given.
type AAEConfig struct {
	// Beta weights the pixel loss against the adversarial loss.
	Beta float64
	// Logits marks discriminator outputs as logits.
	Logits bool
	LR     float64
	Rule   optim.Optimizer
}

// DefaultAAEConfig returns beta 0.5, logit outputs and Adam at lr 3e-4.
func DefaultAAEConfig() AAEConfig {
	return AAEConfig{Beta: 0.5, Logits: true, LR: 3e-4}
}

// AAE trains an adversarial autoencoder with one update over every parameter.
type AAE[B autodiff.BackwardCapable] struct {
	model   AAEModel[B]
	beta    float64
	adv     nn.LossKind
	rule    optim.Optimizer
	metrics *accumulate.CMA

	// Constant targets, rebuilt when the discriminator output shape changes.
	real *tensor.Tensor[B]
	fake *tensor.Tensor[B]
}

// NewAAE creates an adversarial autoencoder optimiser for model.
func NewAAE[B autodiff.BackwardCapable](model AAEModel[B], cfg AAEConfig) *AAE[B] {
	if cfg.LR == 0 {
		cfg.LR = DefaultAAEConfig().LR
	}
	adv := nn.BCE
	if cfg.Logits {
		adv = nn.BCEWithLogits
	}
	return &AAE[B]{
		model:   model,
		beta:    cfg.Beta,
		adv:     adv,
		rule:    defaultRule(cfg.Rule, model.Parameters(), cfg.LR),
		metrics: accumulate.NewCMA("loss", "pixel_loss", "adversarial_loss"),
	}
}

// Step reconstructs batch[0] and updates the model on
// beta*pixel + (1-beta)*adversarial.
func (o *AAE[B]) Step(batch ...*tensor.Tensor[B]) {
	x := batchArg("AAE", batch, 0)
	defer record(x)()

	o.rule.ZeroGrad()
	pixel, adv := o.Loss(x, o.model.Forward(x))
	loss := pixel.MulScalar(o.beta).Add(adv.MulScalar(1 - o.beta))
	o.metrics.Push(loss.Item(), pixel.Item(), adv.Item())
	backward(loss, autodiff.Release, o.model.Parameters())
	o.rule.Step()
}

// Loss returns the pixel MSE between out.Recon and target, and the
// adversarial loss adv(PReal, 1) + adv(PFake, 0).
func (o *AAE[B]) Loss(target *tensor.Tensor[B], out AAEOutput[B]) (pixel, adv *tensor.Tensor[B]) {
	o.targets(out.PReal, out.PFake)
	pixel = nn.Loss(nn.MSE, out.Recon, target.To(o.model.Device()), nn.Mean)
	adv = nn.Loss(o.adv, out.PReal, o.real, nn.Mean).Add(nn.Loss(o.adv, out.PFake, o.fake, nn.Mean))
	return pixel, adv
}

// targets rebuilds the constant targets when the probability shape differs
// from the cached one, rank included.
func (o *AAE[B]) targets(pReal, pFake *tensor.Tensor[B]) {
	if o.real != nil && o.real.Shape().Equal(pReal.Shape()) {
		return
	}
	device := o.model.Device()
	o.real = tensor.Ones(pReal.Shape(), pReal.Backend()).To(device)
	o.fake = tensor.Zeros(pFake.Shape(), pFake.Backend()).To(device)
}

// TargetShape returns the shape of the cached targets, or nil before the first step.
func (o *AAE[B]) TargetShape() tensor.Shape {
	if o.real == nil {
		return nil
	}
	return o.real.Shape()
}

// Metrics returns running means of loss, pixel_loss and adversarial_loss.
func (o *AAE[B]) Metrics() accumulate.Accumulator {
	return o.metrics
}

// Info describes the optimiser.
func (o *AAE[B]) Info() map[string]any {
	return map[string]any{
		"model":            modelName(o.model),
		"adversarial_loss": o.adv.String(),
		"pixel_loss":       nn.MSE.String(),
		"optimiser":        o.rule.String(),
		"beta":             o.beta,
	}
}
