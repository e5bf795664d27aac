package models

import (
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// AE is a deterministic autoencoder.
type AE[B tensor.Backend] struct {
	cfg     Config
	encoder *nn.Sequential[B]
	decoder *nn.Sequential[B]
	backend B
}

// NewAE creates an autoencoder.
func NewAE[B tensor.Backend](cfg Config, backend B) (*AE[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.rng()
	return &AE[B]{
		cfg:     cfg,
		encoder: mlp(cfg.Input, cfg.Hidden, cfg.Latent, rng, backend),
		decoder: decoder(cfg, rng, backend),
		backend: backend,
	}, nil
}

// Name returns "AE".
func (m *AE[B]) Name() string { return "AE" }

// Forward reconstructs x.
func (m *AE[B]) Forward(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return m.decoder.Forward(m.Encode(x))
}

// Encode maps x to its latent code.
func (m *AE[B]) Encode(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	return m.encoder.Forward(x)
}

// Parameters returns encoder then decoder parameters.
func (m *AE[B]) Parameters() []*nn.Parameter[B] {
	return concat(m.encoder.Parameters(), m.decoder.Parameters())
}

// Device returns the backend device.
func (m *AE[B]) Device() tensor.Device {
	return m.backend.Device()
}

// StateDict returns the parameters under "encoder." and "decoder.".
func (m *AE[B]) StateDict() map[string]*tensor.RawTensor {
	return saveAll(map[string]nn.StateDicter{"encoder": m.encoder, "decoder": m.decoder})
}

// LoadStateDict restores parameters saved by StateDict.
func (m *AE[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	return loadAll(sd, map[string]nn.StateLoader{"encoder": m.encoder, "decoder": m.decoder})
}
