package optimise

import (
	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// AEConfig configures an autoencoder optimiser.
type AEConfig struct {
	Loss      nn.LossKind
	Reduction nn.Reduction
	LR        float64
	// Rule overrides the default Adam(LR) update rule.
	Rule optim.Optimizer
}

// DefaultAEConfig returns MSE with mean reduction and Adam at lr 5e-4.
func DefaultAEConfig() AEConfig {
	return AEConfig{Loss: nn.MSE, Reduction: nn.Mean, LR: 5e-4}
}

// AE trains an autoencoder on a single reconstruction loss.
type AE[B autodiff.BackwardCapable] struct {
	model   Network[B]
	loss    nn.LossKind
	reduce  nn.Reduction
	rule    optim.Optimizer
	metrics *accumulate.CMA
}

// NewAE creates an autoencoder optimiser for model.
func NewAE[B autodiff.BackwardCapable](model Network[B], cfg AEConfig) *AE[B] {
	if cfg.LR == 0 {
		cfg.LR = DefaultAEConfig().LR
	}
	return &AE[B]{
		model:   model,
		loss:    cfg.Loss,
		reduce:  cfg.Reduction,
		rule:    defaultRule(cfg.Rule, model.Parameters(), cfg.LR),
		metrics: accumulate.NewCMA("loss"),
	}
}

// Step reconstructs batch[0] and updates the model towards it.
func (o *AE[B]) Step(batch ...*tensor.Tensor[B]) {
	x := batchArg("AE", batch, 0)
	defer record(x)()

	o.rule.ZeroGrad()
	recon := o.model.Forward(x)
	loss := nn.Loss(o.loss, recon, x.To(o.model.Device()), o.reduce)
	o.metrics.Push(loss.Item())
	backward(loss, autodiff.Release, o.model.Parameters())
	o.rule.Step()
}

// Metrics returns the "loss" running mean.
func (o *AE[B]) Metrics() accumulate.Accumulator {
	return o.metrics
}

// Info describes the optimiser.
func (o *AE[B]) Info() map[string]any {
	return map[string]any{
		"model":     modelName(o.model),
		"loss":      o.loss.String(),
		"reduction": o.reduce.String(),
		"optimiser": o.rule.String(),
	}
}

// BCEConfig configures a supervised binary cross-entropy optimiser.
type BCEConfig struct {
	// Logits selects BCE-with-logits over BCE on probabilities.
	Logits bool
	LR     float64
	Rule   optim.Optimizer
}

// DefaultBCEConfig returns BCE-with-logits and Adam at lr 5e-4.
func DefaultBCEConfig() BCEConfig {
	return BCEConfig{Logits: true, LR: 5e-4}
}

// BCE trains a binary classifier.
type BCE[B autodiff.BackwardCapable] struct {
	model   Network[B]
	loss    nn.LossKind
	rule    optim.Optimizer
	metrics *accumulate.CMA
}

// NewBCE creates a classifier optimiser for model.
func NewBCE[B autodiff.BackwardCapable](model Network[B], cfg BCEConfig) *BCE[B] {
	if cfg.LR == 0 {
		cfg.LR = DefaultBCEConfig().LR
	}
	kind := nn.BCE
	if cfg.Logits {
		kind = nn.BCEWithLogits
	}
	return &BCE[B]{
		model:   model,
		loss:    kind,
		rule:    defaultRule(cfg.Rule, model.Parameters(), cfg.LR),
		metrics: accumulate.NewCMA("loss"),
	}
}

// Step fits model(batch[0]) to the labels batch[1].
func (o *BCE[B]) Step(batch ...*tensor.Tensor[B]) {
	x := batchArg("BCE", batch, 0)
	y := batchArg("BCE", batch, 1)
	defer record(x)()

	o.rule.ZeroGrad()
	loss := nn.Loss(o.loss, o.model.Forward(x), y.To(o.model.Device()), nn.Mean)
	o.metrics.Push(loss.Item())
	backward(loss, autodiff.Release, o.model.Parameters())
	o.rule.Step()
}

// Metrics returns the "loss" running mean.
func (o *BCE[B]) Metrics() accumulate.Accumulator {
	return o.metrics
}

// Info describes the optimiser.
func (o *BCE[B]) Info() map[string]any {
	return map[string]any{
		"model":     modelName(o.model),
		"loss":      o.loss.String(),
		"optimiser": o.rule.String(),
	}
}

// LossFunc computes a scalar loss from a batch.
type LossFunc[B tensor.Backend] func(batch ...*tensor.Tensor[B]) *tensor.Tensor[B]

// FuncConfig configures a Func optimiser.
type FuncConfig struct {
	LR   float64
	Rule optim.Optimizer
}

// Func trains model on a caller-supplied objective.
type Func[B autodiff.BackwardCapable] struct {
	model   Model[B]
	loss    LossFunc[B]
	rule    optim.Optimizer
	metrics *accumulate.CMA
}

// NewFunc creates an optimiser minimising loss over model's parameters.
// The default rule is Adam at lr 5e-4.
func NewFunc[B autodiff.BackwardCapable](model Model[B], loss LossFunc[B], cfg FuncConfig) *Func[B] {
	if cfg.LR == 0 {
		cfg.LR = 5e-4
	}
	return &Func[B]{
		model:   model,
		loss:    loss,
		rule:    defaultRule(cfg.Rule, model.Parameters(), cfg.LR),
		metrics: accumulate.NewCMA("loss"),
	}
}

// Step evaluates the objective on batch and applies one update.
func (o *Func[B]) Step(batch ...*tensor.Tensor[B]) {
	defer record(batchArg("Func", batch, 0))()

	o.rule.ZeroGrad()
	loss := o.loss(batch...)
	o.metrics.Push(loss.Item())
	backward(loss, autodiff.Release, o.model.Parameters())
	o.rule.Step()
}

// Metrics returns the "loss" running mean.
func (o *Func[B]) Metrics() accumulate.Accumulator {
	return o.metrics
}

// Info describes the optimiser.
func (o *Func[B]) Info() map[string]any {
	return map[string]any{
		"model":     modelName(o.model),
		"optimiser": o.rule.String(),
	}
}
