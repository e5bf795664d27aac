package optimise

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// logEps keeps the adversarial log terms finite at probabilities 0 and 1.
const logEps = 1e-6

// VAEGANConfig configures a VAE-GAN optimiser.
type VAEGANConfig struct {
	Beta float64
	// LambdaDec weights feature matching against the adversarial term in
	// the decoder objective.
	LambdaDec  float64
	Thresholds Thresholds
	// EMASpan is the span of the loss averages.
	EMASpan int
	// RMSProp configures the three per-network update rules.
	RMSProp optim.RMSPropConfig
	// EncoderRule, DecoderRule and DiscRule replace the RMSProp rule of
	// their network when set. Each must update that network's parameters.
	EncoderRule optim.Optimizer
	DecoderRule optim.Optimizer
	DiscRule    optim.Optimizer
}

// DefaultVAEGANConfig returns beta 1, lambda_dec 1e-6, the default
// thresholds, an EMA span of 100 and RMSProp(lr 3e-4, alpha 0.9, eps 1e-8).
func DefaultVAEGANConfig() VAEGANConfig {
	return VAEGANConfig{
		Beta:       1,
		LambdaDec:  1e-6,
		Thresholds: DefaultThresholds(),
		EMASpan:    100,
		RMSProp:    optim.RMSPropConfig{LR: 3e-4, Alpha: 0.9, Eps: 1e-8},
	}
}

// VAEGANLosses are the three loss terms of one forward pass.
type VAEGANLosses[B tensor.Backend] struct {
	KLD  *tensor.Tensor[B] // beta-weighted KL, per-sample sum, batch mean
	Disl *tensor.Tensor[B] // discriminator feature matching
	GAN  *tensor.Tensor[B] // adversarial
}

// VAEGAN trains encoder, decoder and discriminator with separate update
// rules, gating the decoder and discriminator on how well the
// discriminator separates real inputs from reconstructions.
type VAEGAN[B autodiff.BackwardCapable] struct {
	model      VAEGANModel[B]
	beta       float64
	lambdaDec  float64
	thresholds Thresholds
	gate       GateState

	encoder optim.Optimizer
	decoder optim.Optimizer
	disc    optim.Optimizer
	metrics *accumulate.EMA
}

// NewVAEGAN creates a VAE-GAN optimiser. Zero Thresholds, EMASpan and
// RMSProp fields take their defaults; Beta and LambdaDec are used as given.
func NewVAEGAN[B autodiff.BackwardCapable](model VAEGANModel[B], cfg VAEGANConfig) *VAEGAN[B] {
	def := DefaultVAEGANConfig()
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = def.Thresholds
	}
	if cfg.EMASpan == 0 {
		cfg.EMASpan = def.EMASpan
	}
	if cfg.RMSProp == (optim.RMSPropConfig{}) {
		cfg.RMSProp = def.RMSProp
	}
	return &VAEGAN[B]{
		model:      model,
		beta:       cfg.Beta,
		lambdaDec:  cfg.LambdaDec,
		thresholds: cfg.Thresholds,
		gate:       BothTrain,
		encoder:    rmsRule(cfg.EncoderRule, model.EncoderParameters(), cfg.RMSProp),
		decoder:    rmsRule(cfg.DecoderRule, model.DecoderParameters(), cfg.RMSProp),
		disc:       rmsRule(cfg.DiscRule, model.DiscParameters(), cfg.RMSProp),
		metrics:    accumulate.NewEMA(cfg.EMASpan, "kld_loss", "disl_loss", "gan_loss"),
	}
}

// rmsRule returns rule, or RMSProp over params.
func rmsRule[B tensor.Backend](rule optim.Optimizer, params []*nn.Parameter[B], cfg optim.RMSPropConfig) optim.Optimizer {
	if rule != nil {
		return rule
	}
	return optim.NewRMSProp(params, cfg)
}

// Step runs one forward pass and up to three updates on batch[0]:
// the encoder always, the decoder and the discriminator when the gate
// allows them.
func (o *VAEGAN[B]) Step(batch ...*tensor.Tensor[B]) {
	x := batchArg("VAEGAN", batch, 0)
	defer record(x)()

	params := o.model.Parameters()
	nn.ZeroGrad(params)

	out := o.model.Forward(x)
	l := o.Loss(out)
	o.gate = Gate(o.gate, stat.Mean(out.PReal.Data(), nil), stat.Mean(out.PRecon.Data(), nil), o.thresholds)
	o.metrics.Push(l.KLD.Item(), l.Disl.Item(), l.GAN.Item())

	backward(l.KLD.Add(l.Disl), autodiff.Retain, params)
	o.encoder.Step()
	nn.ZeroGrad(params)

	if o.gate.Decoder() {
		lossDec := l.Disl.MulScalar(o.lambdaDec).Sub(l.GAN.MulScalar(1 - o.lambdaDec))
		backward(lossDec, autodiff.Retain, params)
		o.decoder.Step()
	}

	if o.gate.Discriminator() {
		disc := o.model.DiscParameters()
		nn.ZeroGrad(disc)
		backward(l.GAN, autodiff.Release, disc)
		o.disc.Step()
	}
}

// Loss computes the three loss terms of a forward pass.
func (o *VAEGAN[B]) Loss(out VAEGANOutput[B]) VAEGANLosses[B] {
	kl := perSampleSum(kld(out.Mean, out.LogVar, o.beta)).Mean()
	disl := perSampleSum(out.FeatReal.Sub(out.FeatRecon).Square()).Mean()

	logReal := out.PReal.AddScalar(logEps).Log()
	logRecon := out.PRecon.Neg().AddScalar(1 + logEps).Log()
	logPrior := out.PPrior.Neg().AddScalar(1 + logEps).Log()
	gan := perSampleSum(logReal.Add(logRecon).Add(logPrior)).Mean().Neg()

	return VAEGANLosses[B]{KLD: kl, Disl: disl, GAN: gan}
}

// Gate returns the gate state the next step starts from.
func (o *VAEGAN[B]) Gate() GateState {
	return o.gate
}

// Metrics returns the exponential averages of kld_loss, disl_loss and gan_loss.
func (o *VAEGAN[B]) Metrics() accumulate.Accumulator {
	return o.metrics
}

// Info describes the optimiser.
func (o *VAEGAN[B]) Info() map[string]any {
	return map[string]any{
		"model":             modelName(o.model),
		"optimiser_encoder": o.encoder.String(),
		"optimiser_decoder": o.decoder.String(),
		"optimiser_disc":    o.disc.String(),
		"beta":              o.beta,
		"lambda_dec":        o.lambdaDec,
		"equilibrium":       o.thresholds.Equilibrium,
		"margin":            o.thresholds.Margin,
	}
}
