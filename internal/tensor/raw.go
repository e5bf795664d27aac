package tensor

import "fmt"

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
//
// Only CPU has kernels; the other values label tensors that have been
// relocated for a backend living elsewhere.
const (
	CPU Device = iota
	CUDA
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a dense row-major
// float64 buffer, its shape and the device it lives on.
//
// RawTensor pointers are the identity used by the gradient tape, so a
// parameter update replaces the RawTensor rather than writing into it.
type RawTensor struct {
	data   []float64
	shape  Shape
	device Device
}

// NewRaw creates a zero-filled RawTensor with the given shape.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &RawTensor{
		data:   make([]float64, shape.NumElements()),
		shape:  shape.Clone(),
		device: device,
	}, nil
}

// MustRaw is NewRaw for shapes known to be valid. It panics otherwise.
func MustRaw(shape Shape, device Device) *RawTensor {
	r, err := NewRaw(shape, device)
	if err != nil {
		panic(err)
	}
	return r
}

// RawFromSlice wraps a copy of data in a RawTensor.
func RawFromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, got %d",
			ErrShapeMismatch, shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, device)
	if err != nil {
		return nil, err
	}
	copy(r.data, data)
	return r, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Device returns the device holding the tensor.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// Data returns the underlying buffer. Writes are visible to every holder of r.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// Item returns the single value of a one-element tensor.
func (r *RawTensor) Item() float64 {
	if len(r.data) != 1 {
		panic(fmt.Sprintf("item: tensor with shape %v has %d elements, want 1", r.shape, len(r.data)))
	}
	return r.data[0]
}

// Clone returns a deep copy of r on the same device.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float64, len(r.data))
	copy(data, r.data)
	return &RawTensor{data: data, shape: r.shape.Clone(), device: r.device}
}

// To returns r placed on device d. It is a no-op when r is already there.
func (r *RawTensor) To(d Device) *RawTensor {
	if r.device == d {
		return r
	}
	c := r.Clone()
	c.device = d
	return c
}

// WithShape returns a tensor sharing r's buffer under a new shape.
func (r *RawTensor) WithShape(shape Shape) *RawTensor {
	if shape.NumElements() != len(r.data) {
		panic(fmt.Errorf("reshape: %w: cannot view %v as %v", ErrShapeMismatch, r.shape, shape))
	}
	return &RawTensor{data: r.data, shape: shape.Clone(), device: r.device}
}

// String implements fmt.Stringer.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(shape=%v, device=%s)", r.shape, r.device)
}
