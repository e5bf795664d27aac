// Package cpu implements the CPU backend on top of gonum's floats and mat kernels.
package cpu

import (
	"fmt"

	"github.com/pyworld-ml/pyworld/internal/parallel"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Every kernel allocates its result; inputs are never written, which keeps
// tensors recorded on a gradient tape valid for later backward passes.
//
// Element-wise kernels over large tensors are split across goroutines
// according to the backend's parallel.Config.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend using parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// check panics when any input lives on another device.
func (cpu *CPUBackend) check(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts {
		if t.Device() != cpu.device {
			panic(fmt.Errorf("%s: %w: tensor on %s, backend on %s", op, tensor.ErrDeviceMismatch, t.Device(), cpu.device))
		}
	}
}

// alloc creates a zeroed result tensor on this backend's device.
func (cpu *CPUBackend) alloc(shape tensor.Shape) *tensor.RawTensor {
	return tensor.MustRaw(shape, cpu.device)
}
