// Package optimise coordinates training steps for autoencoder-family models.
//
// Each optimiser bundles a model, its loss terms and one or more update
// rules. A Step call owns the whole step: it records one forward pass on
// the backend's gradient tape, runs every backward pass the objective
// needs, applies the updates, pushes the scalar losses into its
// accumulator and releases the tape before returning.
//
//	opt := optimise.NewVAE(model, optimise.DefaultVAEConfig())
//	for batch := range loader.Batches() {
//	    opt.Step(batch)
//	}
//	fmt.Println(accumulate.Format(opt.Metrics()))
//
// Steps are synchronous and not reentrant. Failures of the numeric
// engine, such as a shape mismatch between reconstruction and target,
// panic and are not recovered.
package optimise

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Optimiser runs one training step per call.
type Optimiser[B autodiff.BackwardCapable] interface {
	// Step consumes one batch and updates the model.
	Step(batch ...*tensor.Tensor[B])

	// Metrics returns the accumulator the step pushes its losses into.
	Metrics() accumulate.Accumulator

	// Info describes the model, losses, update rules and coefficients.
	Info() map[string]any
}

// Model is the part of every model contract the optimisers rely on.
type Model[B tensor.Backend] interface {
	Parameters() []*nn.Parameter[B]
	Device() tensor.Device
}

// Network is a model with a single tensor output (an autoencoder
// reconstruction or a classifier output).
type Network[B tensor.Backend] interface {
	Model[B]
	Forward(x *tensor.Tensor[B]) *tensor.Tensor[B]
}

// VAEOutput is the result of a variational autoencoder forward pass.
type VAEOutput[B tensor.Backend] struct {
	Recon  *tensor.Tensor[B]
	Mean   *tensor.Tensor[B]
	LogVar *tensor.Tensor[B]
}

// VAEModel is a variational autoencoder.
type VAEModel[B tensor.Backend] interface {
	Model[B]
	Forward(x *tensor.Tensor[B]) VAEOutput[B]
}

// AAEOutput is the result of an adversarial autoencoder forward pass.
// PReal and PFake are discriminator outputs for a prior sample and for
// the encoded input.
type AAEOutput[B tensor.Backend] struct {
	Recon *tensor.Tensor[B]
	PReal *tensor.Tensor[B]
	PFake *tensor.Tensor[B]
}

// AAEModel is an adversarial autoencoder.
type AAEModel[B tensor.Backend] interface {
	Model[B]
	Forward(x *tensor.Tensor[B]) AAEOutput[B]
}

// VAEGANOutput is the result of a VAE-GAN forward pass.
type VAEGANOutput[B tensor.Backend] struct {
	Recon  *tensor.Tensor[B]
	Mean   *tensor.Tensor[B]
	LogVar *tensor.Tensor[B]

	// Discriminator probabilities that the input is real, for the genuine
	// input, its reconstruction and a decoded prior sample.
	PReal  *tensor.Tensor[B]
	PRecon *tensor.Tensor[B]
	PPrior *tensor.Tensor[B]

	// Intermediate discriminator features for the genuine input and its
	// reconstruction.
	FeatReal  *tensor.Tensor[B]
	FeatRecon *tensor.Tensor[B]
}

// VAEGANModel is a VAE-GAN with three separately trained sub-networks.
type VAEGANModel[B tensor.Backend] interface {
	Model[B]
	Forward(x *tensor.Tensor[B]) VAEGANOutput[B]
	EncoderParameters() []*nn.Parameter[B]
	DecoderParameters() []*nn.Parameter[B]
	DiscParameters() []*nn.Parameter[B]
}

// record starts recording on the tape of x's backend and returns the
// function that releases it.
func record[B autodiff.BackwardCapable](x *tensor.Tensor[B]) func() {
	tape := x.Backend().Tape()
	tape.StartRecording()
	return tape.Release
}

// backward runs one backward pass from loss and accumulates the result
// into params.
func backward[B autodiff.BackwardCapable](loss *tensor.Tensor[B], retain autodiff.Retention, params []*nn.Parameter[B]) {
	nn.AccumulateGrads(params, autodiff.Backward(loss, retain))
}

// batchArg returns batch[i], panicking with a message naming the optimiser
// when the batch is too short.
func batchArg[B tensor.Backend](name string, batch []*tensor.Tensor[B], i int) *tensor.Tensor[B] {
	if i >= len(batch) || batch[i] == nil {
		panic(fmt.Sprintf("%s.Step: expected at least %d batch tensors, got %d", name, i+1, len(batch)))
	}
	return batch[i]
}

// defaultRule returns rule, or Adam over params with learning rate lr.
func defaultRule[B tensor.Backend](rule optim.Optimizer, params []*nn.Parameter[B], lr float64) optim.Optimizer {
	if rule != nil {
		return rule
	}
	return optim.NewAdam(params, optim.AdamConfig{LR: lr})
}

// Named is implemented by models that report their own display name.
type Named interface {
	Name() string
}

// modelName returns the display name of a model for Info.
func modelName(m any) string {
	if n, ok := m.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// kld is beta * -0.5 * (1 + logvar - mean² - exp(logvar)), before any reduction.
func kld[B tensor.Backend](mean, logVar *tensor.Tensor[B], beta float64) *tensor.Tensor[B] {
	return logVar.AddScalar(1).Sub(mean.Square()).Sub(logVar.Exp()).MulScalar(-0.5 * beta)
}

// perSampleSum sums every dimension but the first.
func perSampleSum[B tensor.Backend](t *tensor.Tensor[B]) *tensor.Tensor[B] {
	return t.Reshape(t.Shape()[0], -1).SumDim(1, false)
}
