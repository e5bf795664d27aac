// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optimise provides one-call training steps for autoencoder-family
// models.
//
// Each optimiser owns a whole step: it records one forward pass, runs the
// backward passes its objective needs, applies the update rules, pushes
// the scalar losses into its accumulator and releases the graph.
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	model, _ := models.NewVAE(models.Config{Input: 784, Hidden: 64, Latent: 4, Sigmoid: true}, backend)
//
//	opt := optimise.NewVAE(model, optimise.DefaultVAEConfig())
//	for x := range batches {
//	    opt.Step(x)
//	}
//	fmt.Println(accumulate.Format(opt.Metrics()))
//
// # VAE-GAN gating
//
// VAEGAN freezes the decoder while the discriminator is confidently
// winning and freezes the discriminator while it is being fooled. The
// current state is available through Gate and in Info under "gate".
package optimise

import (
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/optimise"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Optimiser runs one training step per call.
type Optimiser[B autodiff.BackwardCapable] = optimise.Optimiser[B]

// Model contracts

// Model is the part of every model contract the optimisers rely on.
type Model[B tensor.Backend] = optimise.Model[B]

// Network is a model with a single tensor output.
type Network[B tensor.Backend] = optimise.Network[B]

// VAEOutput is the result of a variational autoencoder forward pass.
type VAEOutput[B tensor.Backend] = optimise.VAEOutput[B]

// VAEModel is a model producing a VAEOutput.
type VAEModel[B tensor.Backend] = optimise.VAEModel[B]

// AAEOutput is the result of an adversarial autoencoder forward pass.
type AAEOutput[B tensor.Backend] = optimise.AAEOutput[B]

// AAEModel is a model producing an AAEOutput.
type AAEModel[B tensor.Backend] = optimise.AAEModel[B]

// VAEGANOutput is the result of a VAE-GAN forward pass.
type VAEGANOutput[B tensor.Backend] = optimise.VAEGANOutput[B]

// VAEGANModel is a model producing a VAEGANOutput with separable parameter groups.
type VAEGANModel[B tensor.Backend] = optimise.VAEGANModel[B]

// Autoencoders

// AEConfig configures an AE optimiser.
type AEConfig = optimise.AEConfig

// AE trains a plain autoencoder on its reconstruction loss.
type AE[B autodiff.BackwardCapable] = optimise.AE[B]

// DefaultAEConfig returns MSE with mean reduction and Adam at 5e-4.
func DefaultAEConfig() AEConfig {
	return optimise.DefaultAEConfig()
}

// NewAE wraps model in an AE optimiser.
func NewAE[B autodiff.BackwardCapable](model Network[B], cfg AEConfig) *AE[B] {
	return optimise.NewAE(model, cfg)
}

// VAEConfig configures a VAE optimiser.
type VAEConfig = optimise.VAEConfig

// VAE trains a variational autoencoder on reconstruction plus beta-weighted KL.
type VAE[B autodiff.BackwardCapable] = optimise.VAE[B]

// DefaultVAEConfig returns MSE reconstruction, beta 1 and Adam at 5e-4.
func DefaultVAEConfig() VAEConfig {
	return optimise.DefaultVAEConfig()
}

// NewVAE wraps model in a VAE optimiser.
func NewVAE[B autodiff.BackwardCapable](model VAEModel[B], cfg VAEConfig) *VAE[B] {
	return optimise.NewVAE(model, cfg)
}

// AAEConfig configures an AAE optimiser.
type AAEConfig = optimise.AAEConfig

// AAE trains an adversarial autoencoder.
type AAE[B autodiff.BackwardCapable] = optimise.AAE[B]

// DefaultAAEConfig returns beta 0.5, logits and Adam at 3e-4.
func DefaultAAEConfig() AAEConfig {
	return optimise.DefaultAAEConfig()
}

// NewAAE wraps model in an AAE optimiser.
func NewAAE[B autodiff.BackwardCapable](model AAEModel[B], cfg AAEConfig) *AAE[B] {
	return optimise.NewAAE(model, cfg)
}

// VAEGANConfig configures a VAE-GAN optimiser.
type VAEGANConfig = optimise.VAEGANConfig

// VAEGANLosses holds the three VAE-GAN objectives of one forward pass.
type VAEGANLosses[B tensor.Backend] = optimise.VAEGANLosses[B]

// VAEGAN trains a VAE-GAN with equilibrium gating.
type VAEGAN[B autodiff.BackwardCapable] = optimise.VAEGAN[B]

// DefaultVAEGANConfig returns the VAE-GAN defaults.
func DefaultVAEGANConfig() VAEGANConfig {
	return optimise.DefaultVAEGANConfig()
}

// NewVAEGAN wraps model in a VAE-GAN optimiser.
func NewVAEGAN[B autodiff.BackwardCapable](model VAEGANModel[B], cfg VAEGANConfig) *VAEGAN[B] {
	return optimise.NewVAEGAN(model, cfg)
}

// Generic steps

// BCEConfig configures a BCE optimiser.
type BCEConfig = optimise.BCEConfig

// BCE trains a network against targets with binary cross-entropy.
type BCE[B autodiff.BackwardCapable] = optimise.BCE[B]

// DefaultBCEConfig returns BCE with logits and Adam at 5e-4.
func DefaultBCEConfig() BCEConfig {
	return optimise.DefaultBCEConfig()
}

// NewBCE wraps model in a BCE optimiser.
func NewBCE[B autodiff.BackwardCapable](model Network[B], cfg BCEConfig) *BCE[B] {
	return optimise.NewBCE(model, cfg)
}

// LossFunc computes a scalar loss from a batch.
type LossFunc[B tensor.Backend] = optimise.LossFunc[B]

// FuncConfig configures a Func optimiser.
type FuncConfig = optimise.FuncConfig

// Func trains model on an arbitrary loss function.
type Func[B autodiff.BackwardCapable] = optimise.Func[B]

// NewFunc wraps model and loss in a Func optimiser.
func NewFunc[B autodiff.BackwardCapable](model Model[B], loss LossFunc[B], cfg FuncConfig) *Func[B] {
	return optimise.NewFunc(model, loss, cfg)
}

// Gating

// GateState records which VAE-GAN sub-networks train on the next step.
type GateState = optimise.GateState

// Gate states.
const (
	Neither           = optimise.Neither
	DecoderOnly       = optimise.DecoderOnly
	DiscriminatorOnly = optimise.DiscriminatorOnly
	BothTrain         = optimise.BothTrain
)

// Thresholds are the equilibrium and margin of the gate.
type Thresholds = optimise.Thresholds

// DefaultThresholds returns equilibrium 0.68 and margin 0.2.
func DefaultThresholds() Thresholds {
	return optimise.DefaultThresholds()
}

// Gate returns the next state from the discriminator's mean outputs.
func Gate(s GateState, meanReal, meanRecon float64, t Thresholds) GateState {
	return optimise.Gate(s, meanReal, meanRecon, t)
}
