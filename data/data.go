// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides in-memory datasets and a mini-batch loader.
//
//	ds, _ := data.LoadMNIST("data/mnist", true, 1024)
//	loader := data.NewLoader(ds, 64, true, 1, backend)
//	for x, y := range loader.Batches() {
//		opt.Step(x, y)
//	}
package data

import (
	"github.com/pyworld-ml/pyworld/internal/data"
	"github.com/pyworld-ml/pyworld/tensor"
)

// Dataset is a set of flattened samples with one label each.
type Dataset = data.Dataset

// BlobsConfig describes a synthetic dataset of Gaussian clusters.
type BlobsConfig = data.BlobsConfig

// Blobs draws a synthetic dataset of Gaussian clusters clipped to [0, 1].
func Blobs(cfg BlobsConfig) (*Dataset, error) {
	return data.Blobs(cfg)
}

// LoadMNIST reads the MNIST training or test split from dir, keeping at
// most limit samples when limit is positive. Pixels are scaled to [0, 1].
func LoadMNIST(dir string, train bool, limit int) (*Dataset, error) {
	return data.LoadMNIST(dir, train, limit)
}

// Loader yields shuffled mini-batches of a Dataset as tensors.
type Loader[B tensor.Backend] = data.Loader[B]

// NewLoader creates a loader over ds. With shuffle set the order is
// redrawn from seed on every pass.
func NewLoader[B tensor.Backend](ds *Dataset, batchSize int, shuffle bool, seed uint64, backend B) *Loader[B] {
	return data.NewLoader(ds, batchSize, shuffle, seed, backend)
}
