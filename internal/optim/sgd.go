package optim

import (
	"fmt"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter[B]][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		panic(fmt.Sprintf("SGD: momentum must be in [0, 1), got %g", config.Momentum))
	}

	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]][]float64),
	}
}

// Step performs a single optimization step.
func (s *SGD[B]) Step() {
	for _, param := range s.params {
		if param.Grad() == nil {
			continue
		}
		if s.momentum == 0 {
			update(param, func(_ int, v, g float64) float64 {
				return v - s.lr*g
			})
			continue
		}
		vel := state(s.velocities, param)
		update(param, func(i int, v, g float64) float64 {
			vel[i] = s.momentum*vel[i] + g
			return v - s.lr*vel[i]
		})
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	nn.ZeroGrad(s.params)
}

// LR returns the current learning rate.
func (s *SGD[B]) LR() float64 {
	return s.lr
}

// SetLR sets the learning rate.
func (s *SGD[B]) SetLR(lr float64) {
	s.lr = lr
}

// String describes the optimizer.
func (s *SGD[B]) String() string {
	return fmt.Sprintf("SGD(lr=%g, momentum=%g)", s.lr, s.momentum)
}
