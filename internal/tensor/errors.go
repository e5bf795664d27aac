package tensor

import "errors"

// Errors raised by tensor operations.
//
// Kernels panic with values wrapping these sentinels; callers that want to
// inspect a failure recover the panic and use errors.Is.
var (
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrDeviceMismatch = errors.New("device mismatch")
	ErrInvalidShape   = errors.New("invalid shape")
)
