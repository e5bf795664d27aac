// Package train runs one configured training run end to end: data,
// model, optimiser, tracker and plots.
package train

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/autodiff"
	"github.com/pyworld-ml/pyworld/internal/backend/cpu"
	"github.com/pyworld-ml/pyworld/internal/config"
	"github.com/pyworld-ml/pyworld/internal/data"
	"github.com/pyworld-ml/pyworld/internal/plot"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/pyworld-ml/pyworld/internal/tracking"
)

// Backend is the backend every run trains on.
type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// gridSamples is the number of inputs shown in the reconstruction grid.
const gridSamples = 8

// Result summarises a finished run.
type Result struct {
	Steps  int
	Epochs int
	// Metrics is the readout of the last epoch.
	Metrics map[string]float64
	// RunDir is the tracker's run directory, empty when tracking is disabled.
	RunDir string
	// Plots lists the files written to the plot directory.
	Plots []string
}

// Run trains the model described by cfg. It stops between steps when ctx
// is cancelled and returns ctx's error.
func Run(ctx context.Context, cfg config.Run, logger *slog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ds, err := LoadData(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "source", cfg.Data.Source, "samples", ds.Len(), "features", ds.Features)

	backend := autodiff.New(cpu.New())
	sess, err := newSession(cfg, backend)
	if err != nil {
		return nil, err
	}
	logger.Info("optimiser ready", "kind", cfg.Model.Kind, "info", sess.opt.Info())

	run, err := tracking.New(cfg.Tracking, tracking.WithLogger(logger), tracking.WithSnapshot(cfg))
	if err != nil {
		return nil, err
	}
	res, err := loop(ctx, cfg, ds, backend, sess, run, logger)
	if cerr := run.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	res.RunDir = run.Dir()
	return res, nil
}

func loop(ctx context.Context, cfg config.Run, ds *data.Dataset, backend Backend, sess *session,
	run *tracking.Run, logger *slog.Logger) (*Result, error) {
	if err := run.Watch(sess.model); err != nil {
		return nil, err
	}

	metrics := sess.opt.Metrics()
	history := plot.NewHistory(metrics.Labels()...)
	loader := data.NewLoader(ds, cfg.Train.BatchSize, cfg.Train.Shuffle, cfg.Train.Seed, backend)
	res := &Result{}

	for epoch := range cfg.Train.Epochs {
		for x := range loader.Batches() {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, "epoch %d step %d", epoch, res.Steps)
			}
			sess.opt.Step(x)
			res.Steps++

			if cfg.Train.LogEvery > 0 && res.Steps%cfg.Train.LogEvery == 0 {
				logger.Debug("step", "epoch", epoch, "step", res.Steps, "metrics", accumulate.Format(metrics))
				logMetrics(run, res.Steps, metrics.Map(), logger)
			}
		}

		res.Metrics = metrics.Map()
		logger.Info("epoch finished", "epoch", epoch, "steps", res.Steps, "metrics", accumulate.Format(metrics))
		if cfg.Train.LogEvery == 0 {
			logMetrics(run, res.Steps, res.Metrics, logger)
		}
		history.Record(epoch, metrics)
		metrics.Reset()
		res.Epochs++
	}

	if cfg.PlotDir != "" {
		plots, err := render(cfg, ds, backend, sess, history)
		if err != nil {
			return nil, err
		}
		res.Plots = plots
		logger.Info("plots written", "files", plots)
	}
	return res, nil
}

// logMetrics records metrics with the tracker. A failed online post does
// not stop training.
func logMetrics(run *tracking.Run, step int, values map[string]float64, logger *slog.Logger) {
	if err := run.Log(step, values); err != nil {
		logger.Warn("tracking failed", "step", step, "err", err)
	}
}

// LoadData builds the dataset named by cfg.Data.
func LoadData(cfg config.Run) (*data.Dataset, error) {
	var (
		ds  *data.Dataset
		err error
	)
	switch cfg.Data.Source {
	case config.SourceMNIST:
		ds, err = data.LoadMNIST(cfg.Data.Dir, true, cfg.Data.Limit)
	default:
		ds, err = data.Blobs(data.BlobsConfig{
			Samples:  cfg.Data.Samples,
			Features: cfg.Data.Features,
			Centers:  cfg.Data.Centers,
			Spread:   cfg.Data.Spread,
			Seed:     cfg.Train.Seed,
		})
		if err == nil {
			ds.Limit(cfg.Data.Limit)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "load data")
	}
	return ds, nil
}

// render writes the loss history, a grid of inputs over their
// reconstructions and, for generative models, a grid of prior samples.
func render(cfg config.Run, ds *data.Dataset, backend Backend, sess *session, history *plot.History) ([]string, error) {
	var written []string

	lossPath := filepath.Join(cfg.PlotDir, "loss.png")
	opts := plot.Options{Title: string(cfg.Model.Kind) + " training", XLabel: "epoch", YLabel: "loss"}
	if err := history.Plot(lossPath, opts); err != nil {
		return nil, err
	}
	written = append(written, lossPath)

	rows, cols := ds.Rows, ds.Cols
	if rows*cols == 0 {
		rows, cols = 1, ds.Features
	}

	n := min(gridSamples, ds.Len())
	x, err := tensor.FromSlice(ds.Inputs[:n*ds.Features], tensor.Shape{n, ds.Features}, backend)
	if err != nil {
		return nil, errors.Wrap(err, "reconstruction batch")
	}
	recon := sess.reconstruct(x)
	pix := append(append([]float64{}, x.Data()...), recon.Data()...)
	images, err := plot.Images(pix, rows, cols, 1)
	if err != nil {
		return nil, err
	}
	reconPath := filepath.Join(cfg.PlotDir, "reconstructions.png")
	if err := plot.ImageGrid(reconPath, images, n, 4); err != nil {
		return nil, err
	}
	written = append(written, reconPath)

	if sess.sample != nil {
		images, err := plot.Images(sess.sample(gridSamples).Data(), rows, cols, 1)
		if err != nil {
			return nil, err
		}
		samplePath := filepath.Join(cfg.PlotDir, "samples.png")
		if err := plot.ImageGrid(samplePath, images, 0, 4); err != nil {
			return nil, err
		}
		written = append(written, samplePath)
	}
	return written, nil
}
