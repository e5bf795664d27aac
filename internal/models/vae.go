package models

import (
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// VAE is a variational autoencoder with a Gaussian encoder.
type VAE[B tensor.Backend] struct {
	cfg     Config
	encoder *gaussian[B]
	decoder *nn.Sequential[B]
	rng     *rand.Rand
	backend B
}

// NewVAE creates a variational autoencoder.
func NewVAE[B tensor.Backend](cfg Config, backend B) (*VAE[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.rng()
	return &VAE[B]{
		cfg:     cfg,
		encoder: newGaussian(cfg, rng, backend),
		decoder: decoder(cfg, rng, backend),
		rng:     rng,
		backend: backend,
	}, nil
}

// Name returns "VAE".
func (m *VAE[B]) Name() string { return "VAE" }

// Forward encodes x, samples a latent code and decodes it.
func (m *VAE[B]) Forward(x *tensor.Tensor[B]) optimise.VAEOutput[B] {
	mean, logVar := m.encoder.forward(x)
	z := reparameterize(mean, logVar, m.rng)
	return optimise.VAEOutput[B]{Recon: m.decoder.Forward(z), Mean: mean, LogVar: logVar}
}

// Sample decodes n codes drawn from the unit Gaussian prior.
func (m *VAE[B]) Sample(n int) *tensor.Tensor[B] {
	return m.decoder.Forward(tensor.Randn(tensor.Shape{n, m.cfg.Latent}, m.rng, m.backend))
}

// Parameters returns encoder then decoder parameters.
func (m *VAE[B]) Parameters() []*nn.Parameter[B] {
	return concat(m.encoder.parameters(), m.decoder.Parameters())
}

// Device returns the backend device.
func (m *VAE[B]) Device() tensor.Device {
	return m.backend.Device()
}

// StateDict returns the parameters under "encoder." and "decoder.".
func (m *VAE[B]) StateDict() map[string]*tensor.RawTensor {
	sd := saveAll(map[string]nn.StateDicter{"decoder": m.decoder})
	m.encoder.stateDict(sd, "encoder")
	return sd
}

// LoadStateDict restores parameters saved by StateDict.
func (m *VAE[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	if err := m.encoder.loadStateDict(sd, "encoder"); err != nil {
		return err
	}
	return loadAll(sd, map[string]nn.StateLoader{"decoder": m.decoder})
}
