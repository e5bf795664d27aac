// Package main provides the pyworld CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pyworld-ml/pyworld/internal/accumulate"
	"github.com/pyworld-ml/pyworld/internal/config"
	"github.com/pyworld-ml/pyworld/internal/tracking"
	"github.com/pyworld-ml/pyworld/internal/train"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "pyworld:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}
	switch args[0] {
	case "train":
		return trainCmd(ctx, args[1:], stderr)
	case "show":
		return showCmd(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "pyworld %s\n", version)
		return nil
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	}
	usage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "pyworld %s - training-step coordination for autoencoder models\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train -config run.yaml [-model kind] [-epochs n]   Run one training run")
	fmt.Fprintln(w, "  show -run dir [-metric name]                       Print the metrics of a run")
	fmt.Fprintln(w, "  version                                            Show version")
}

func trainCmd(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "YAML run configuration (defaults when empty)")
	kind := fs.String("model", "", "Override model.kind: ae, vae, aae or vaegan")
	epochs := fs.Int("epochs", 0, "Override train.epochs")
	mode := fs.String("tracking", "", "Override tracking.mode: online, offline or disabled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return err
		}
	}
	if *kind != "" {
		cfg.Model.Kind = config.Kind(*kind)
	}
	if *epochs > 0 {
		cfg.Train.Epochs = *epochs
	}
	if *mode != "" {
		m, err := tracking.ParseMode(*mode)
		if err != nil {
			return err
		}
		cfg.Tracking.Mode = m
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	res, err := train.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("training finished", "steps", res.Steps, "epochs", res.Epochs, "metrics", res.Metrics, "run_dir", res.RunDir)
	return nil
}

func showCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("run", "", "Run directory")
	metric := fs.String("metric", "", "Print every logged value of one metric")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("show: -run is required")
	}
	if _, err := os.Stat(*dir); err != nil {
		return err
	}

	store, err := tracking.OpenStore(*dir)
	if err != nil {
		return err
	}
	defer store.Close()

	keys := []string{*metric}
	if *metric == "" {
		if keys, err = store.Keys(); err != nil {
			return err
		}
	}

	for _, key := range keys {
		points, err := store.History(key)
		if err != nil {
			return err
		}
		if *metric != "" {
			for _, p := range points {
				fmt.Fprintf(stdout, "%d\t%.6g\n", p.Step, p.Value)
			}
			continue
		}
		if len(points) == 0 {
			continue
		}
		cma := accumulate.NewCMA(key)
		for _, p := range points {
			cma.Push(p.Value)
		}
		last := points[len(points)-1]
		fmt.Fprintf(stdout, "%-20s last=%.6g (step %d) mean=%.6g n=%d\n", key, last.Value, last.Step, cma.Get(key), cma.Count())
	}
	return nil
}
