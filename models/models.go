// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides small fully connected reference networks that
// satisfy the model contracts of package optimise.
//
//	backend := autodiff.New(cpu.New())
//	cfg := models.Config{Input: 784, Hidden: 128, Latent: 8, Seed: 1, Sigmoid: true}
//	model, err := models.NewVAEGAN(cfg, backend)
//	opt := optimise.NewVAEGAN(model, optimise.DefaultVAEGANConfig())
package models

import (
	"github.com/pyworld-ml/pyworld/internal/models"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Config sizes a reference model.
type Config = models.Config

// AE is a deterministic autoencoder.
type AE[B tensor.Backend] = models.AE[B]

// NewAE builds an autoencoder.
func NewAE[B tensor.Backend](cfg Config, backend B) (*AE[B], error) {
	return models.NewAE(cfg, backend)
}

// VAE is a variational autoencoder with a unit Gaussian prior.
type VAE[B tensor.Backend] = models.VAE[B]

// NewVAE builds a variational autoencoder.
func NewVAE[B tensor.Backend](cfg Config, backend B) (*VAE[B], error) {
	return models.NewVAE(cfg, backend)
}

// AAE is an adversarial autoencoder with a latent discriminator.
type AAE[B tensor.Backend] = models.AAE[B]

// NewAAE builds an adversarial autoencoder.
func NewAAE[B tensor.Backend](cfg Config, backend B) (*AAE[B], error) {
	return models.NewAAE(cfg, backend)
}

// VAEGAN is a VAE whose decoder is judged by an image-space discriminator.
type VAEGAN[B tensor.Backend] = models.VAEGAN[B]

// NewVAEGAN builds a VAE-GAN.
func NewVAEGAN[B tensor.Backend](cfg Config, backend B) (*VAEGAN[B], error) {
	return models.NewVAEGAN(cfg, backend)
}
