// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/pkg/errors"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/serialization"
	"github.com/pyworld-ml/pyworld/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, rng, backend),
//	    nn.NewReLU[Backend](),
//	    nn.NewLinear(128, 10, rng, backend),
//	)
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is a module whose parameters can be exported and restored by name.
// Linear and Sequential implement it, as do the networks in package models.
type Stateful interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Save writes the state dict of module to path in the safetensors format.
//
// Example:
//
//	model := nn.NewLinear(784, 10, rng, backend)
//	err := nn.Save(model, "model.safetensors", map[string]string{"epoch": "3"})
func Save(module Stateful, path string, metadata map[string]string) error {
	if err := serialization.WriteSafeTensors(path, module.StateDict(), metadata); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// Load reads a safetensors file into module and returns its metadata.
// The tensors are validated against the stored checksum and against the
// shapes module already has.
//
// Example:
//
//	model := nn.NewLinear(784, 10, rng, backend)
//	meta, err := nn.Load("model.safetensors", model)
func Load(path string, module Stateful) (map[string]string, error) {
	stateDict, metadata, err := serialization.ReadSafeTensors(path, tensor.CPU)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if err := module.LoadStateDict(stateDict); err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return metadata, nil
}
