// Package config loads the YAML description of a training run.
//
// A minimal file:
//
//	model:
//	  kind: vae
//	train:
//	  epochs: 5
//	data:
//	  source: blobs
//
// Everything left out keeps the value of Default.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pyworld-ml/pyworld/internal/nn"
	"github.com/pyworld-ml/pyworld/internal/tracking"
)

// Kind names a model and its optimiser.
type Kind string

// Model kinds.
const (
	KindAE     Kind = "ae"
	KindVAE    Kind = "vae"
	KindAAE    Kind = "aae"
	KindVAEGAN Kind = "vaegan"
)

// Kinds lists every supported model kind.
var Kinds = []Kind{KindAE, KindVAE, KindAAE, KindVAEGAN}

// Data sources.
const (
	SourceBlobs = "blobs"
	SourceMNIST = "mnist"
)

// MNISTFeatures is the flattened size of an MNIST image.
const MNISTFeatures = 28 * 28

// Run is the complete configuration of one training run.
type Run struct {
	Model    Model           `yaml:"model"`
	Train    Train           `yaml:"train"`
	Data     Data            `yaml:"data"`
	Tracking tracking.Config `yaml:"tracking"`
	// PlotDir receives the loss curve and reconstruction grid. Empty disables plots.
	PlotDir  string `yaml:"plot_dir"`
	LogLevel string `yaml:"log_level"`
}

// Model sizes the reference network.
type Model struct {
	Kind    Kind `yaml:"kind"`
	Hidden  int  `yaml:"hidden"`
	Latent  int  `yaml:"latent"`
	Sigmoid bool `yaml:"sigmoid"`
}

// Train holds the optimisation settings. Nil Beta and LambdaDec and a zero
// LR select the optimiser's own defaults.
type Train struct {
	Epochs    int         `yaml:"epochs"`
	BatchSize int         `yaml:"batch_size"`
	Shuffle   bool        `yaml:"shuffle"`
	Seed      uint64      `yaml:"seed"`
	Loss      nn.LossKind `yaml:"loss"`
	Beta      *float64    `yaml:"beta"`
	LR        float64     `yaml:"lr"`
	LambdaDec *float64    `yaml:"lambda_dec"`
	// Equilibrium and Margin set the VAE-GAN gating thresholds.
	Equilibrium float64 `yaml:"equilibrium"`
	Margin      float64 `yaml:"margin"`
	// LogEvery logs the running metrics every LogEvery steps. Zero logs once per epoch.
	LogEvery int `yaml:"log_every"`
}

// Data selects the training set.
type Data struct {
	Source string `yaml:"source"`
	// Dir holds the MNIST files.
	Dir   string `yaml:"dir"`
	Limit int    `yaml:"limit"`

	Samples  int     `yaml:"samples"`
	Features int     `yaml:"features"`
	Centers  int     `yaml:"centers"`
	Spread   float64 `yaml:"spread"`
}

// Default returns a small VAE run on synthetic blobs.
func Default() Run {
	return Run{
		Model: Model{Kind: KindVAE, Hidden: 64, Latent: 4, Sigmoid: true},
		Train: Train{
			Epochs:      10,
			BatchSize:   32,
			Shuffle:     true,
			Seed:        1,
			Loss:        nn.MSE,
			Equilibrium: 0.68,
			Margin:      0.2,
		},
		Data: Data{
			Source:   SourceBlobs,
			Samples:  1024,
			Features: 16,
			Centers:  4,
			Spread:   0.05,
		},
		Tracking: tracking.Config{Project: "pyworld", Dir: "runs", Mode: tracking.ModeOffline, Save: true},
		PlotDir:  "plots",
		LogLevel: "info",
	}
}

// Load reads path, applies it over Default and validates the result.
func Load(path string) (Run, error) {
	//nolint:gosec // G304: path is chosen by the caller.
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Run{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Run, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Run{}, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return Run{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no run can use.
func (r Run) Validate() error {
	if !slices.Contains(Kinds, r.Model.Kind) {
		return errors.Errorf("model.kind: unknown kind %q, want one of %v", r.Model.Kind, Kinds)
	}
	if r.Model.Hidden <= 0 || r.Model.Latent <= 0 {
		return errors.Errorf("model: hidden and latent must be positive, got %d and %d", r.Model.Hidden, r.Model.Latent)
	}

	t := r.Train
	if t.Epochs <= 0 {
		return errors.Errorf("train.epochs must be positive, got %d", t.Epochs)
	}
	if t.BatchSize <= 0 {
		return errors.Errorf("train.batch_size must be positive, got %d", t.BatchSize)
	}
	if t.LR < 0 {
		return errors.Errorf("train.lr must not be negative, got %g", t.LR)
	}
	if t.LogEvery < 0 {
		return errors.Errorf("train.log_every must not be negative, got %d", t.LogEvery)
	}
	if t.Beta != nil && r.Model.Kind == KindAAE && (*t.Beta < 0 || *t.Beta > 1) {
		return errors.Errorf("train.beta must lie in [0, 1] for aae, got %g", *t.Beta)
	}
	if t.LambdaDec != nil && (*t.LambdaDec < 0 || *t.LambdaDec > 1) {
		return errors.Errorf("train.lambda_dec must lie in [0, 1], got %g", *t.LambdaDec)
	}
	if t.Margin < 0 {
		return errors.Errorf("train.margin must not be negative, got %g", t.Margin)
	}

	switch r.Data.Source {
	case SourceBlobs:
		if r.Data.Samples <= 0 || r.Data.Features <= 0 || r.Data.Centers <= 0 {
			return errors.New("data: blobs need positive samples, features and centers")
		}
	case SourceMNIST:
		if r.Data.Dir == "" {
			return errors.New("data.dir is required for mnist")
		}
	default:
		return errors.Errorf("data.source: unknown source %q, want %s or %s", r.Data.Source, SourceBlobs, SourceMNIST)
	}
	if r.Data.Limit < 0 {
		return errors.Errorf("data.limit must not be negative, got %d", r.Data.Limit)
	}

	if _, err := r.Level(); err != nil {
		return err
	}
	return nil
}

// Features returns the flattened input size implied by the data source.
func (r Run) Features() int {
	if r.Data.Source == SourceMNIST {
		return MNISTFeatures
	}
	return r.Data.Features
}

// Level parses LogLevel.
func (r Run) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(r.LogLevel)); err != nil {
		return 0, errors.Wrap(err, "log_level")
	}
	return level, nil
}
