package models

import (
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// AAE is an adversarial autoencoder whose discriminator separates prior
// samples from encoded inputs in latent space. The discriminator emits
// logits.
type AAE[B tensor.Backend] struct {
	cfg     Config
	encoder *nn.Sequential[B]
	decoder *nn.Sequential[B]
	disc    *nn.Sequential[B]
	rng     *rand.Rand
	backend B
}

// NewAAE creates an adversarial autoencoder.
func NewAAE[B tensor.Backend](cfg Config, backend B) (*AAE[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.rng()
	return &AAE[B]{
		cfg:     cfg,
		encoder: mlp(cfg.Input, cfg.Hidden, cfg.Latent, rng, backend),
		decoder: decoder(cfg, rng, backend),
		disc:    mlp(cfg.Latent, cfg.Hidden, 1, rng, backend),
		rng:     rng,
		backend: backend,
	}, nil
}

// Name returns "AAE".
func (m *AAE[B]) Name() string { return "AAE" }

// Forward reconstructs x and scores a prior sample (real) and the
// encoded batch (fake).
func (m *AAE[B]) Forward(x *tensor.Tensor[B]) optimise.AAEOutput[B] {
	z := m.encoder.Forward(x)
	prior := tensor.Randn(z.Shape(), m.rng, m.backend)
	return optimise.AAEOutput[B]{
		Recon: m.decoder.Forward(z),
		PReal: m.disc.Forward(prior),
		PFake: m.disc.Forward(z),
	}
}

// Parameters returns encoder, decoder and discriminator parameters.
func (m *AAE[B]) Parameters() []*nn.Parameter[B] {
	return concat(m.encoder.Parameters(), m.decoder.Parameters(), m.disc.Parameters())
}

// Device returns the backend device.
func (m *AAE[B]) Device() tensor.Device {
	return m.backend.Device()
}

// StateDict returns the parameters under "encoder.", "decoder." and "disc.".
func (m *AAE[B]) StateDict() map[string]*tensor.RawTensor {
	return saveAll(map[string]nn.StateDicter{"encoder": m.encoder, "decoder": m.decoder, "disc": m.disc})
}

// LoadStateDict restores parameters saved by StateDict.
func (m *AAE[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadAll(sd, map[string]nn.StateLoader{"encoder": m.encoder, "decoder": m.decoder, "disc": m.disc})
}
