package models

import (
	"math/rand/v2"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// VAEGAN is a VAE whose decoder is also a GAN generator. The
// discriminator has a feature layer, used for feature matching, and a
// sigmoid head giving the probability that its input is real.
type VAEGAN[B tensor.Backend] struct {
	cfg      Config
	encoder  *gaussian[B]
	decoder  *nn.Sequential[B]
	features *nn.Sequential[B]
	head     *nn.Sequential[B]
	rng      *rand.Rand
	backend  B
}

// NewVAEGAN creates a VAE-GAN.
func NewVAEGAN[B tensor.Backend](cfg Config, backend B) (*VAEGAN[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.rng()
	return &VAEGAN[B]{
		cfg:      cfg,
		encoder:  newGaussian(cfg, rng, backend),
		decoder:  decoder(cfg, rng, backend),
		features: nn.NewSequential[B](nn.NewLinear(cfg.Input, cfg.Hidden, rng, backend), nn.NewReLU[B]()),
		head:     nn.NewSequential[B](nn.NewLinear(cfg.Hidden, 1, rng, backend), nn.NewSigmoid[B]()),
		rng:      rng,
		backend:  backend,
	}, nil
}

// Name returns "VAEGAN".
func (m *VAEGAN[B]) Name() string { return "VAEGAN" }

// Forward runs the encoder, the decoder on the sampled code and on a prior
// sample, and the discriminator on the input and both decodings.
func (m *VAEGAN[B]) Forward(x *tensor.Tensor[B]) optimise.VAEGANOutput[B] {
	mean, logVar := m.encoder.forward(x)
	recon := m.decoder.Forward(reparameterize(mean, logVar, m.rng))
	prior := m.decoder.Forward(tensor.Randn(mean.Shape(), m.rng, m.backend))

	featReal := m.features.Forward(x)
	featRecon := m.features.Forward(recon)
	return optimise.VAEGANOutput[B]{
		Recon:     recon,
		Mean:      mean,
		LogVar:    logVar,
		PReal:     m.head.Forward(featReal),
		PRecon:    m.head.Forward(featRecon),
		PPrior:    m.head.Forward(m.features.Forward(prior)),
		FeatReal:  featReal,
		FeatRecon: featRecon,
	}
}

// Sample decodes n codes drawn from the unit Gaussian prior.
func (m *VAEGAN[B]) Sample(n int) *tensor.Tensor[B] {
	return m.decoder.Forward(tensor.Randn(tensor.Shape{n, m.cfg.Latent}, m.rng, m.backend))
}

// Parameters returns encoder, decoder and discriminator parameters.
func (m *VAEGAN[B]) Parameters() []*nn.Parameter[B] {
	return concat(m.EncoderParameters(), m.DecoderParameters(), m.DiscParameters())
}

// EncoderParameters returns the encoder parameters.
func (m *VAEGAN[B]) EncoderParameters() []*nn.Parameter[B] {
	return m.encoder.parameters()
}

// DecoderParameters returns the decoder parameters.
func (m *VAEGAN[B]) DecoderParameters() []*nn.Parameter[B] {
	return m.decoder.Parameters()
}

// DiscParameters returns the discriminator parameters.
func (m *VAEGAN[B]) DiscParameters() []*nn.Parameter[B] {
	return concat(m.features.Parameters(), m.head.Parameters())
}

// Device returns the backend device.
func (m *VAEGAN[B]) Device() tensor.Device {
	return m.backend.Device()
}

// StateDict returns the parameters under "encoder.", "decoder.",
// "disc.features." and "disc.head.".
func (m *VAEGAN[B]) StateDict() map[string]*tensor.RawTensor {
	sd := saveAll(map[string]nn.StateDicter{
		"decoder":       m.decoder,
		"disc.features": m.features,
		"disc.head":     m.head,
	})
	m.encoder.stateDict(sd, "encoder")
	return sd
}

// LoadStateDict restores parameters saved by StateDict.
func (m *VAEGAN[B]) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	if err := m.encoder.loadStateDict(sd, "encoder"); err != nil {
		return err
	}
	return loadAll(sd, map[string]nn.StateLoader{
		"decoder":       m.decoder,
		"disc.features": m.features,
		"disc.head":     m.head,
	})
}
