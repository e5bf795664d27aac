// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/optim"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Optimizer interface defines the common interface for all update rules.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// DefaultAdamConfig returns LR 1e-3, betas (0.9, 0.999) and eps 1e-8.
func DefaultAdamConfig() AdamConfig {
	return optim.DefaultAdamConfig()
}

// NewAdam creates a new Adam optimizer. Zero fields of config take their defaults.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 5e-4})
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}

// RMSProp

// RMSProp represents the RMSProp optimizer.
type RMSProp[B tensor.Backend] = optim.RMSProp[B]

// RMSPropConfig contains configuration for RMSProp optimizer.
type RMSPropConfig = optim.RMSPropConfig

// DefaultRMSPropConfig returns LR 0.01, alpha 0.99 and eps 1e-8.
func DefaultRMSPropConfig() RMSPropConfig {
	return optim.DefaultRMSPropConfig()
}

// NewRMSProp creates a new RMSProp optimizer.
func NewRMSProp[B tensor.Backend](params []*nn.Parameter[B], config RMSPropConfig) *RMSProp[B] {
	return optim.NewRMSProp(params, config)
}
