package autodiff

import (
	"errors"

	"github.com/pyworld-ml/pyworld/internal/autodiff/ops"
	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// ErrGraphReleased is the panic value of a backward pass on a tape whose
// recorded graph has already been released.
var ErrGraphReleased = errors.New("autodiff: backward through a released graph")

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// The tape is the arena of one training step: every tensor produced between
// StartRecording and Release stays reachable through the recorded operations,
// so several backward passes can share one forward computation.
//
// Usage:
//
//	tape.StartRecording()
//	defer tape.Release()
//	// ... forward pass ...
//	grads := tape.Backward(loss, seed, backend)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool
	released   bool
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64),
	}
}

// StartRecording clears any previous graph and enables operation recording.
func (t *GradientTape) StartRecording() {
	t.operations = t.operations[:0]
	t.recording = true
	t.released = false
}

// StopRecording disables operation recording. The graph is kept.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// IsReleased reports whether the recorded graph has been released.
func (t *GradientTape) IsReleased() bool {
	return t.released
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Release drops the recorded graph and stops recording.
// Further backward passes panic with ErrGraphReleased until the next
// StartRecording.
func (t *GradientTape) Release() {
	clear(t.operations)
	t.operations = t.operations[:0]
	t.recording = false
	t.released = true
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients of root by walking the tape in reverse.
//
// Algorithm:
//  1. Seed the gradient of root with seed (ones for a scalar loss)
//  2. Walk operations in reverse order
//  3. Skip operations no gradient reaches
//  4. Accumulate gradients when the same tensor is used multiple times
//
// The tape is left intact; the caller decides whether to Release it.
func (t *GradientTape) Backward(root, seed *tensor.RawTensor, backend tensor.Backend) Gradients {
	if t.released {
		panic(ErrGraphReleased)
	}
	if len(t.operations) == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	// Gradient computations must not land on the tape they walk.
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	grads := Gradients{root: seed}
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(outGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}
