package data

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// BlobsConfig describes a synthetic dataset of Gaussian clusters.
type BlobsConfig struct {
	Samples  int
	Features int
	Centers  int
	// Spread is the standard deviation of every cluster.
	Spread float64
	Seed   uint64
}

// Blobs draws Samples points from Centers isotropic Gaussians with
// centres uniform in [0.2, 0.8]. Values are clipped to [0, 1] so they
// suit sigmoid decoders, and the label of a point is its cluster index.
func Blobs(cfg BlobsConfig) (*Dataset, error) {
	if cfg.Samples <= 0 || cfg.Features <= 0 || cfg.Centers <= 0 {
		return nil, errors.Errorf("blobs: samples, features and centers must be positive, got %d, %d, %d",
			cfg.Samples, cfg.Features, cfg.Centers)
	}
	if cfg.Spread < 0 {
		return nil, errors.Errorf("blobs: negative spread %g", cfg.Spread)
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5bd1e995))

	centers := make([][]float64, cfg.Centers)
	for c := range centers {
		centers[c] = make([]float64, cfg.Features)
		for j := range centers[c] {
			centers[c][j] = 0.2 + 0.6*rng.Float64()
		}
	}

	ds := &Dataset{
		Inputs:   make([]float64, cfg.Samples*cfg.Features),
		Labels:   make([]float64, cfg.Samples),
		Features: cfg.Features,
	}
	for i := range cfg.Samples {
		c := i % cfg.Centers
		ds.Labels[i] = float64(c)
		row := ds.Sample(i)
		for j := range row {
			row[j] = min(1, max(0, centers[c][j]+cfg.Spread*rng.NormFloat64()))
		}
	}
	return ds, nil
}
