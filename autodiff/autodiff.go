// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. It wraps any backend to add autodiff capabilities.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	defer backend.Tape().Release()
//
//	x := tensor.Ones(tensor.Shape{2}, backend)
//	y := x.Mul(x).Sum()
//	grads := autodiff.Backward(y, autodiff.Retain)
//	fmt.Println(grads.Of(x.Raw()).Data()) // [2 2]
//
// A second pass over the same graph is allowed only while the tape is
// retained. After autodiff.Release, or an explicit Tape().Release(), further
// passes panic with ErrGraphReleased.
package autodiff

import (
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// BackwardCapable is satisfied by backends that own a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// GradientTape records operations for the backward pass.
type GradientTape = autodiff.GradientTape

// Gradients maps tensors reached by a backward pass to their gradients.
type Gradients = autodiff.Gradients

// Retention says whether a backward pass keeps the recorded graph.
type Retention = autodiff.Retention

// Retention modes.
const (
	Release = autodiff.Release
	Retain  = autodiff.Retain
)

// ErrGraphReleased is the panic value of a backward pass through a released graph.
var ErrGraphReleased = autodiff.ErrGraphReleased

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// Backward computes the gradients of loss, keeping or releasing the graph
// according to retain.
func Backward[B BackwardCapable](loss *tensor.Tensor[B], retain Retention) Gradients {
	return autodiff.Backward(loss, retain)
}
