// Package models provides small fully connected reference models for the
// optimise package: an autoencoder, a VAE, an adversarial autoencoder and
// a VAE-GAN.
package models

import (
	"fmt"
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Config sizes a reference model.
type Config struct {
	Input  int // flattened input features
	Hidden int // width of every hidden layer
	Latent int // latent code size
	// Seed drives weight initialisation and sampling.
	Seed uint64
	// Sigmoid adds a sigmoid to the decoder output.
	Sigmoid bool
}

// Validate checks that every size is positive.
func (c Config) Validate() error {
	if c.Input <= 0 || c.Hidden <= 0 || c.Latent <= 0 {
		return fmt.Errorf("models: sizes must be positive, got input=%d hidden=%d latent=%d", c.Input, c.Hidden, c.Latent)
	}
	return nil
}

func (c Config) rng() *rand.Rand {
	return rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
}

// mlp builds Linear(in, hidden) -> ReLU -> Linear(hidden, out).
func mlp[B tensor.Backend](in, hidden, out int, rng *rand.Rand, backend B) *nn.Sequential[B] {
	return nn.NewSequential[B](
		nn.NewLinear(in, hidden, rng, backend),
		nn.NewReLU[B](),
		nn.NewLinear(hidden, out, rng, backend),
	)
}

// decoder builds the latent-to-input network.
func decoder[B tensor.Backend](cfg Config, rng *rand.Rand, backend B) *nn.Sequential[B] {
	dec := mlp(cfg.Latent, cfg.Hidden, cfg.Input, rng, backend)
	if cfg.Sigmoid {
		dec.Add(nn.NewSigmoid[B]())
	}
	return dec
}

// gaussian holds the trunk and heads of a Gaussian encoder.
type gaussian[B tensor.Backend] struct {
	trunk  *nn.Sequential[B]
	mean   *nn.Linear[B]
	logVar *nn.Linear[B]
}

func newGaussian[B tensor.Backend](cfg Config, rng *rand.Rand, backend B) *gaussian[B] {
	return &gaussian[B]{
		trunk:  nn.NewSequential[B](nn.NewLinear(cfg.Input, cfg.Hidden, rng, backend), nn.NewReLU[B]()),
		mean:   nn.NewLinear(cfg.Hidden, cfg.Latent, rng, backend),
		logVar: nn.NewLinear(cfg.Hidden, cfg.Latent, rng, backend),
	}
}

func (g *gaussian[B]) forward(x *tensor.Tensor[B]) (mean, logVar *tensor.Tensor[B]) {
	h := g.trunk.Forward(x)
	return g.mean.Forward(h), g.logVar.Forward(h)
}

func (g *gaussian[B]) parameters() []*nn.Parameter[B] {
	params := g.trunk.Parameters()
	params = append(params, g.mean.Parameters()...)
	return append(params, g.logVar.Parameters()...)
}

func (g *gaussian[B]) stateDict(dst map[string]*tensor.RawTensor, prefix string) {
	nn.PrefixStateDict(dst, prefix+".trunk", g.trunk.StateDict())
	nn.PrefixStateDict(dst, prefix+".mean", g.mean.StateDict())
	nn.PrefixStateDict(dst, prefix+".logvar", g.logVar.StateDict())
}

func (g *gaussian[B]) loadStateDict(src map[string]*tensor.RawTensor, prefix string) error {
	sub := nn.SubStateDict(src, prefix)
	if err := g.trunk.LoadStateDict(nn.SubStateDict(sub, "trunk")); err != nil {
		return fmt.Errorf("%s.trunk: %w", prefix, err)
	}
	if err := g.mean.LoadStateDict(nn.SubStateDict(sub, "mean")); err != nil {
		return fmt.Errorf("%s.mean: %w", prefix, err)
	}
	if err := g.logVar.LoadStateDict(nn.SubStateDict(sub, "logvar")); err != nil {
		return fmt.Errorf("%s.logvar: %w", prefix, err)
	}
	return nil
}

// reparameterize draws z = mean + exp(0.5 * logVar) * eps with eps ~ N(0, I).
func reparameterize[B tensor.Backend](mean, logVar *tensor.Tensor[B], rng *rand.Rand) *tensor.Tensor[B] {
	eps := tensor.Randn(mean.Shape(), rng, mean.Backend())
	return mean.Add(logVar.MulScalar(0.5).Exp().Mul(eps))
}

// loadAll restores each named sub-network from src.
func loadAll(src map[string]*tensor.RawTensor, parts map[string]nn.StateLoader) error {
	for prefix, part := range parts {
		if err := part.LoadStateDict(nn.SubStateDict(src, prefix)); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	return nil
}

// saveAll collects the state dicts of the named sub-networks.
func saveAll(parts map[string]nn.StateDicter) map[string]*tensor.RawTensor {
	dst := make(map[string]*tensor.RawTensor)
	for prefix, part := range parts {
		nn.PrefixStateDict(dst, prefix, part.StateDict())
	}
	return dst
}

// concat joins parameter lists.
func concat[B tensor.Backend](groups ...[]*nn.Parameter[B]) []*nn.Parameter[B] {
	var out []*nn.Parameter[B]
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
