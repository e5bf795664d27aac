package optimise_test

import (
	"math"
	"testing"

	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/backend/cpu"
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/stretchr/testify/require"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() Backend {
	return autodiff.New(cpu.New())
}

func param(t *testing.T, b Backend, name string, shape tensor.Shape, values ...float64) *nn.Parameter[Backend] {
	t.Helper()
	v, err := tensor.FromSlice(values, shape, b)
	require.NoError(t, err)
	return nn.NewParameter(name, v)
}

func batch(t *testing.T, b Backend, shape tensor.Shape, fill func(i int) float64) *tensor.Tensor[Backend] {
	t.Helper()
	x := tensor.Zeros(shape, b)
	data := x.Data()
	for i := range data {
		data[i] = fill(i)
	}
	return x
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// scaleAE reconstructs x as x * w.
type scaleAE struct {
	w *nn.Parameter[Backend]
}

func (m *scaleAE) Forward(x *tensor.Tensor[Backend]) *tensor.Tensor[Backend] {
	return x.Mul(m.w.Tensor())
}

func (m *scaleAE) Parameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.w}
}

func (m *scaleAE) Device() tensor.Device {
	return tensor.CPU
}

// fixedVAE reconstructs x * w and broadcasts learned latent statistics
// over the batch.
type fixedVAE struct {
	w, mu, logVar *nn.Parameter[Backend]
}

func (m *fixedVAE) Forward(x *tensor.Tensor[Backend]) optimise.VAEOutput[Backend] {
	latent := tensor.Zeros(tensor.Shape{x.Shape()[0], m.mu.Tensor().Shape()[1]}, x.Backend())
	return optimise.VAEOutput[Backend]{
		Recon:  x.Mul(m.w.Tensor()),
		Mean:   latent.Add(m.mu.Tensor()),
		LogVar: latent.Add(m.logVar.Tensor()),
	}
}

func (m *fixedVAE) Parameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.w, m.mu, m.logVar}
}

func (m *fixedVAE) Device() tensor.Device {
	return tensor.CPU
}

// fixedAAE reconstructs x * w and emits a learned logit per sample; flat
// drops the trailing unit dimension of the discriminator outputs.
type fixedAAE struct {
	w, d *nn.Parameter[Backend]
	flat bool
}

func (m *fixedAAE) Forward(x *tensor.Tensor[Backend]) optimise.AAEOutput[Backend] {
	n := x.Shape()[0]
	p := tensor.Zeros(tensor.Shape{n, 1}, x.Backend()).Add(m.d.Tensor())
	if m.flat {
		p = p.Reshape(n)
	}
	return optimise.AAEOutput[Backend]{
		Recon: x.Mul(m.w.Tensor()),
		PReal: p,
		PFake: p.Neg(),
	}
}

func (m *fixedAAE) Parameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.w, m.d}
}

func (m *fixedAAE) Device() tensor.Device {
	return tensor.CPU
}

// tinyVAEGAN has one scalar weight per sub-network plus a discriminator
// bias that sets the discriminator's output level.
//
//	z = x*e, recon = z*d, prior = d, disc(u) = σ(u*c + bias), feat(u) = u*c
type tinyVAEGAN struct {
	e, d, c, bias *nn.Parameter[Backend]
}

func newTinyVAEGAN(t *testing.T, b Backend, p float64) *tinyVAEGAN {
	return &tinyVAEGAN{
		e:    param(t, b, "e", tensor.Shape{1}, 0.5),
		d:    param(t, b, "d", tensor.Shape{1}, 0.8),
		c:    param(t, b, "c", tensor.Shape{1}, 0.1),
		bias: param(t, b, "bias", tensor.Shape{1}, logit(p)),
	}
}

func (m *tinyVAEGAN) disc(u *tensor.Tensor[Backend]) *tensor.Tensor[Backend] {
	return u.Mul(m.c.Tensor()).Add(m.bias.Tensor()).Sigmoid()
}

func (m *tinyVAEGAN) Forward(x *tensor.Tensor[Backend]) optimise.VAEGANOutput[Backend] {
	z := x.Mul(m.e.Tensor())
	recon := z.Mul(m.d.Tensor())
	prior := tensor.Ones(x.Shape(), x.Backend()).Mul(m.d.Tensor())
	return optimise.VAEGANOutput[Backend]{
		Recon:     recon,
		Mean:      z,
		LogVar:    z.MulScalar(0),
		PReal:     m.disc(x),
		PRecon:    m.disc(recon),
		PPrior:    m.disc(prior),
		FeatReal:  x.Mul(m.c.Tensor()),
		FeatRecon: recon.Mul(m.c.Tensor()),
	}
}

func (m *tinyVAEGAN) Parameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.e, m.d, m.c, m.bias}
}

func (m *tinyVAEGAN) EncoderParameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.e}
}

func (m *tinyVAEGAN) DecoderParameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.d}
}

func (m *tinyVAEGAN) DiscParameters() []*nn.Parameter[Backend] {
	return []*nn.Parameter[Backend]{m.c, m.bias}
}

func (m *tinyVAEGAN) Device() tensor.Device {
	return tensor.CPU
}

// gradRecorder is an update rule that leaves its parameters alone and
// keeps the gradient each one held when Step was called.
type gradRecorder struct {
	params []*nn.Parameter[Backend]
	steps  int
	grads  map[string]float64
}

func newGradRecorder(params []*nn.Parameter[Backend]) *gradRecorder {
	return &gradRecorder{params: params, grads: make(map[string]float64)}
}

func (r *gradRecorder) Step() {
	r.steps++
	for _, p := range r.params {
		if g := p.Grad(); g != nil {
			r.grads[p.Name()] = g.Data()[0]
		}
	}
}

func (r *gradRecorder) ZeroGrad() { nn.ZeroGrad(r.params) }
func (r *gradRecorder) LR() float64 { return 0 }
func (r *gradRecorder) SetLR(float64) {}
func (r *gradRecorder) String() string { return "gradRecorder" }
