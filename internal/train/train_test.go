package train_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyworld-ml/pyworld/internal/config"
	"github.com/pyworld-ml/pyworld/internal/serialization"
	"github.com/pyworld-ml/pyworld/internal/tensor"
	"github.com/pyworld-ml/pyworld/internal/tracking"
	"github.com/pyworld-ml/pyworld/internal/train"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallRun(t *testing.T, kind config.Kind) config.Run {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Model = config.Model{Kind: kind, Hidden: 8, Latent: 2, Sigmoid: true}
	cfg.Train.Epochs = 2
	cfg.Train.BatchSize = 16
	cfg.Data.Samples = 40
	cfg.Data.Features = 6
	cfg.Tracking = tracking.Config{Project: "test", RunID: string(kind), Dir: filepath.Join(dir, "runs"), Save: true}
	cfg.PlotDir = filepath.Join(dir, "plots")
	return cfg
}

func TestRunEveryKind(t *testing.T) {
	wantLabels := map[config.Kind][]string{
		config.KindAE:     {"loss"},
		config.KindVAE:    {"loss", "kld_loss", "mse_loss"},
		config.KindAAE:    {"loss", "pixel_loss", "adversarial_loss"},
		config.KindVAEGAN: {"kld_loss", "disl_loss", "gan_loss"},
	}
	for _, kind := range config.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			cfg := smallRun(t, kind)
			res, err := train.Run(context.Background(), cfg, quietLogger())
			require.NoError(t, err)

			// 40 samples in batches of 16: 3 steps per epoch.
			assert.Equal(t, 6, res.Steps)
			assert.Equal(t, 2, res.Epochs)
			for _, label := range wantLabels[kind] {
				require.Contains(t, res.Metrics, label)
				assert.False(t, math.IsNaN(res.Metrics[label]), label)
			}

			assert.Equal(t, filepath.Join(cfg.Tracking.Dir, "test", string(kind)), res.RunDir)
			for _, name := range []string{"config.yaml", "metrics.jsonl", "metrics.db", "model.yaml", "summary.yaml", "model.safetensors"} {
				assert.FileExists(t, filepath.Join(res.RunDir, name))
			}

			store, err := tracking.OpenStore(res.RunDir)
			require.NoError(t, err)
			defer store.Close()
			points, err := store.History(wantLabels[kind][0])
			require.NoError(t, err)
			assert.Len(t, points, 2)

			state, _, err := serialization.ReadSafeTensors(filepath.Join(res.RunDir, "model.safetensors"), tensor.CPU)
			require.NoError(t, err)
			assert.NotEmpty(t, state)

			assert.Contains(t, res.Plots, filepath.Join(cfg.PlotDir, "loss.png"))
			assert.Contains(t, res.Plots, filepath.Join(cfg.PlotDir, "reconstructions.png"))
			for _, p := range res.Plots {
				assert.FileExists(t, p)
			}
		})
	}
}

func TestRunSamplesForGenerativeModels(t *testing.T) {
	cfg := smallRun(t, config.KindVAE)
	res, err := train.Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Contains(t, res.Plots, filepath.Join(cfg.PlotDir, "samples.png"))

	cfg = smallRun(t, config.KindAE)
	res, err = train.Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.NotContains(t, res.Plots, filepath.Join(cfg.PlotDir, "samples.png"))
}

func TestRunLogEvery(t *testing.T) {
	cfg := smallRun(t, config.KindAE)
	cfg.Train.LogEvery = 2
	res, err := train.Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	store, err := tracking.OpenStore(res.RunDir)
	require.NoError(t, err)
	defer store.Close()
	points, err := store.History("loss")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, []int{2, 4, 6}, []int{points[0].Step, points[1].Step, points[2].Step})
}

func TestRunDisabledTrackingAndPlots(t *testing.T) {
	cfg := smallRun(t, config.KindAAE)
	cfg.Tracking.Mode = tracking.ModeDisabled
	cfg.PlotDir = ""

	res, err := train.Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, res.RunDir)
	assert.Empty(t, res.Plots)
	assert.NoDirExists(t, cfg.Tracking.Dir)
}

func TestRunCancelled(t *testing.T) {
	cfg := smallRun(t, config.KindAE)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := train.Run(ctx, cfg, quietLogger())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := smallRun(t, config.KindAE)
	cfg.Train.Epochs = 0
	_, err := train.Run(context.Background(), cfg, quietLogger())
	require.Error(t, err)
}

func TestLoadDataLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Limit = 10
	ds, err := train.LoadData(cfg)
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Len())

	cfg.Data = config.Data{Source: config.SourceMNIST, Dir: filepath.Join(t.TempDir(), "missing")}
	_, err = train.LoadData(cfg)
	require.Error(t, err)
	_, statErr := os.Stat(cfg.Data.Dir)
	assert.True(t, os.IsNotExist(statErr))
}
