package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out, &out))
	assert.Equal(t, "pyworld "+version+"\n", out.String())
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &out, &out))
	assert.Contains(t, out.String(), "train -config")

	var stderr bytes.Buffer
	err := run(context.Background(), []string{"fly"}, &out, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Commands:")
}

func TestTrainAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	yaml := fmt.Sprintf(`
model:
  kind: ae
  hidden: 4
  latent: 2
train:
  epochs: 5
  batch_size: 10
data:
  samples: 20
  features: 3
tracking:
  project: cli
  run_id: r1
  dir: %s
plot_dir: ""
log_level: warn
`, filepath.Join(dir, "runs"))
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"train", "-config", path, "-epochs", "2"}, &stdout, &stderr))
	assert.Empty(t, stderr.String())

	runDir := filepath.Join(dir, "runs", "cli", "r1")
	assert.FileExists(t, filepath.Join(runDir, "model.safetensors"))

	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"show", "-run", runDir}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "loss")
	assert.Contains(t, stdout.String(), "n=2")

	stdout.Reset()
	require.NoError(t, run(context.Background(), []string{"show", "-run", runDir, "-metric", "loss"}, &stdout, &stderr))
	assert.Equal(t, 2, bytes.Count(stdout.Bytes(), []byte("\n")))
}

func TestTrainRejectsBadOverrides(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), []string{"train", "-model", "gan"}, &out, &out))
	assert.Error(t, run(context.Background(), []string{"train", "-tracking", "sometimes"}, &out, &out))
	assert.Error(t, run(context.Background(), []string{"train", "-config", filepath.Join(t.TempDir(), "none.yaml")}, &out, &out))
}

func TestShowRequiresRun(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), []string{"show"}, &out, &out))
	assert.Error(t, run(context.Background(), []string{"show", "-run", filepath.Join(t.TempDir(), "missing")}, &out, &out))
}
