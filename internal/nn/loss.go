package nn

import (
	"fmt"
	"math"
	"strings"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// LossKind enumerates the element-wise losses the optimisers support.
type LossKind int

// Supported loss kinds.
const (
	// MSE is the mean squared error (x - y)².
	MSE LossKind = iota
	// BCE is binary cross-entropy on probabilities.
	BCE
	// BCEWithLogits is binary cross-entropy on logits.
	BCEWithLogits
)

var lossLabels = [...]string{
	MSE:           "mse_loss",
	BCE:           "binary_cross_entropy",
	BCEWithLogits: "binary_cross_entropy_with_logits",
}

// String returns the display label used for metric channels and run info.
func (k LossKind) String() string {
	if k < 0 || int(k) >= len(lossLabels) {
		return fmt.Sprintf("LossKind(%d)", int(k))
	}
	return lossLabels[k]
}

// ParseLossKind accepts a label ("mse_loss") or a short name ("mse", "bce",
// "bce_logits").
func ParseLossKind(s string) (LossKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mse", lossLabels[MSE]:
		return MSE, nil
	case "bce", lossLabels[BCE]:
		return BCE, nil
	case "bce_logits", "bce_with_logits", lossLabels[BCEWithLogits]:
		return BCEWithLogits, nil
	}
	return 0, fmt.Errorf("unknown loss kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k LossKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LossKind) UnmarshalText(text []byte) error {
	parsed, err := ParseLossKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Reduction selects how element-wise losses collapse to a scalar.
type Reduction int

// Reductions.
const (
	Mean Reduction = iota
	Sum
)

// String returns "mean" or "sum".
func (r Reduction) String() string {
	if r == Sum {
		return "sum"
	}
	return "mean"
}

// logFloor keeps log(p) >= -100 for p near zero.
var logFloor = math.Exp(-100)

// Loss computes kind between input (prediction) and target, reduced to a scalar.
//
// Panics with tensor.ErrShapeMismatch when the shapes differ.
func Loss[B tensor.Backend](kind LossKind, input, target *tensor.Tensor[B], reduction Reduction) *tensor.Tensor[B] {
	if !input.Shape().Equal(target.Shape()) {
		panic(fmt.Errorf("%s: %w: input %v, target %v", kind, tensor.ErrShapeMismatch, input.Shape(), target.Shape()))
	}

	var elems *tensor.Tensor[B]
	switch kind {
	case MSE:
		elems = input.Sub(target).Square()
	case BCE:
		// -(y log p + (1-y) log(1-p)), each log floored at -100.
		logP := input.Clamp(logFloor, 1).Log()
		log1mP := input.Neg().AddScalar(1).Clamp(logFloor, 1).Log()
		elems = target.Mul(logP).Add(target.Neg().AddScalar(1).Mul(log1mP)).Neg()
	case BCEWithLogits:
		// softplus(x) - x*y
		elems = input.Softplus().Sub(input.Mul(target))
	default:
		panic(fmt.Sprintf("nn.Loss: unsupported loss kind %d", int(kind)))
	}

	if reduction == Sum {
		return elems.Sum()
	}
	return elems.Mean()
}

// MSELoss is Loss(MSE, input, target, Mean).
func MSELoss[B tensor.Backend](input, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	return Loss(MSE, input, target, Mean)
}

// BCELoss is Loss(BCE, input, target, Mean).
func BCELoss[B tensor.Backend](input, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	return Loss(BCE, input, target, Mean)
}

// BCEWithLogitsLoss is Loss(BCEWithLogits, input, target, Mean).
func BCEWithLogitsLoss[B tensor.Backend](input, target *tensor.Tensor[B]) *tensor.Tensor[B] {
	return Loss(BCEWithLogits, input, target, Mean)
}
