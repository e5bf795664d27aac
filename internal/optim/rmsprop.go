package optim

import (
	"fmt"
	"math"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// RMSProp implements the RMSprop optimizer.
//
// Update rule:
//
//	v_t = alpha * v_{t-1} + (1-alpha) * gradient²
//	buf = momentum * buf + gradient / (sqrt(v_t) + eps)
//	param = param - lr * buf
//
// With zero momentum the buffer is just the scaled gradient.
type RMSProp[B tensor.Backend] struct {
	params   []*nn.Parameter[B]
	lr       float64
	alpha    float64
	eps      float64
	momentum float64
	square   map[*nn.Parameter[B]][]float64
	buf      map[*nn.Parameter[B]][]float64
}

// RMSPropConfig holds configuration for RMSProp optimizer.
type RMSPropConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Alpha    float64 // Smoothing constant (default: 0.99)
	Eps      float64 // Term for numerical stability (default: 1e-8)
	Momentum float64 // Momentum factor (default: 0)
}

// DefaultRMSPropConfig returns the default RMSProp hyperparameters.
func DefaultRMSPropConfig() RMSPropConfig {
	return RMSPropConfig{
		LR:    0.01,
		Alpha: 0.99,
		Eps:   1e-8,
	}
}

// NewRMSProp creates a new RMSProp optimizer. Zero fields of config take
// their defaults, except Momentum.
func NewRMSProp[B tensor.Backend](params []*nn.Parameter[B], config RMSPropConfig) *RMSProp[B] {
	def := DefaultRMSPropConfig()
	if config.LR == 0 {
		config.LR = def.LR
	}
	if config.Alpha == 0 {
		config.Alpha = def.Alpha
	}
	if config.Eps == 0 {
		config.Eps = def.Eps
	}

	return &RMSProp[B]{
		params:   params,
		lr:       config.LR,
		alpha:    config.Alpha,
		eps:      config.Eps,
		momentum: config.Momentum,
		square:   make(map[*nn.Parameter[B]][]float64),
		buf:      make(map[*nn.Parameter[B]][]float64),
	}
}

// Step performs a single optimization step.
func (r *RMSProp[B]) Step() {
	for _, param := range r.params {
		if param.Grad() == nil {
			continue
		}
		sq := state(r.square, param)
		var buf []float64
		if r.momentum > 0 {
			buf = state(r.buf, param)
		}
		update(param, func(i int, p, g float64) float64 {
			sq[i] = r.alpha*sq[i] + (1-r.alpha)*g*g
			step := g / (math.Sqrt(sq[i]) + r.eps)
			if buf != nil {
				buf[i] = r.momentum*buf[i] + step
				step = buf[i]
			}
			return p - r.lr*step
		})
	}
}

// ZeroGrad clears gradients for all parameters.
func (r *RMSProp[B]) ZeroGrad() {
	nn.ZeroGrad(r.params)
}

// LR returns the current learning rate.
func (r *RMSProp[B]) LR() float64 {
	return r.lr
}

// SetLR sets the learning rate.
func (r *RMSProp[B]) SetLR(lr float64) {
	r.lr = lr
}

// String describes the optimizer.
func (r *RMSProp[B]) String() string {
	return fmt.Sprintf("RMSprop(lr=%g, alpha=%g, eps=%g, momentum=%g)", r.lr, r.alpha, r.eps, r.momentum)
}
