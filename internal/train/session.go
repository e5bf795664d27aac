package train

import (
	"github.com/pkg/errors"

	"github.com/pyworld-ml/pyworld/internal/config"
	"github.com/pyworld-ml/pyworld/internal/models"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/pyworld-ml/pyworld/internal/tracking"
)

// session is a model, its optimiser and the views render needs.
type session struct {
	opt         optimise.Optimiser[Backend]
	model       tracking.Model
	reconstruct func(x *tensor.Tensor[Backend]) *tensor.Tensor[Backend]
	// sample is nil for models without a prior.
	sample func(n int) *tensor.Tensor[Backend]
}

func newSession(cfg config.Run, backend Backend) (*session, error) {
	mc := models.Config{
		Input:   cfg.Features(),
		Hidden:  cfg.Model.Hidden,
		Latent:  cfg.Model.Latent,
		Seed:    cfg.Train.Seed,
		Sigmoid: cfg.Model.Sigmoid,
	}
	t := cfg.Train

	switch cfg.Model.Kind {
	case config.KindAE:
		m, err := models.NewAE(mc, backend)
		if err != nil {
			return nil, errors.Wrap(err, "build ae")
		}
		oc := optimise.DefaultAEConfig()
		oc.Loss = t.Loss
		oc.LR = t.LR
		return &session{
			opt:         optimise.NewAE(m, oc),
			model:       m,
			reconstruct: m.Forward,
		}, nil

	case config.KindVAE:
		m, err := models.NewVAE(mc, backend)
		if err != nil {
			return nil, errors.Wrap(err, "build vae")
		}
		oc := optimise.DefaultVAEConfig()
		oc.Loss = t.Loss
		oc.LR = t.LR
		if t.Beta != nil {
			oc.Beta = *t.Beta
		}
		return &session{
			opt:         optimise.NewVAE(m, oc),
			model:       m,
			reconstruct: func(x *tensor.Tensor[Backend]) *tensor.Tensor[Backend] { return m.Forward(x).Recon },
			sample:      m.Sample,
		}, nil

	case config.KindAAE:
		m, err := models.NewAAE(mc, backend)
		if err != nil {
			return nil, errors.Wrap(err, "build aae")
		}
		oc := optimise.DefaultAAEConfig()
		oc.LR = t.LR
		if t.Beta != nil {
			oc.Beta = *t.Beta
		}
		return &session{
			opt:         optimise.NewAAE(m, oc),
			model:       m,
			reconstruct: func(x *tensor.Tensor[Backend]) *tensor.Tensor[Backend] { return m.Forward(x).Recon },
		}, nil

	case config.KindVAEGAN:
		m, err := models.NewVAEGAN(mc, backend)
		if err != nil {
			return nil, errors.Wrap(err, "build vaegan")
		}
		oc := optimise.DefaultVAEGANConfig()
		if t.Beta != nil {
			oc.Beta = *t.Beta
		}
		if t.LambdaDec != nil {
			oc.LambdaDec = *t.LambdaDec
		}
		oc.Thresholds = optimise.Thresholds{Equilibrium: t.Equilibrium, Margin: t.Margin}
		if t.LR > 0 {
			oc.RMSProp.LR = t.LR
		}
		return &session{
			opt:         optimise.NewVAEGAN(m, oc),
			model:       m,
			reconstruct: func(x *tensor.Tensor[Backend]) *tensor.Tensor[Backend] { return m.Forward(x).Recon },
			sample:      m.Sample,
		}, nil
	}
	return nil, errors.Errorf("unknown model kind %q", cfg.Model.Kind)
}
