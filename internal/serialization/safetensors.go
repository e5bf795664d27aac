package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/pyworld-ml/pyworld/internal/tensor"
)

// DTypeF64 is the only dtype written and accepted.
const DTypeF64 = "F64"

const metadataKey = "__metadata__"

// TensorHeader describes one tensor in the SafeTensors header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes a state dict to path.
//
// Tensors are stored in alphabetical order by name. metadata is copied into
// the header together with the checksum of the data section.
func WriteSafeTensors(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	//nolint:gosec // G304: path is chosen by the caller.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Encode(file, stateDict, metadata); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Encode writes a state dict in SafeTensors format to w.
func Encode(w io.Writer, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := slices.Sorted(maps.Keys(stateDict))

	header := make(map[string]any, len(names)+1)
	var data []byte
	for _, name := range names {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		raw := stateDict[name]
		start := int64(len(data))
		for _, v := range raw.Data() {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}
		header[name] = TensorHeader{
			DType:       DTypeF64,
			Shape:       shape,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	maps.Copy(meta, metadata)
	meta[ChecksumKey] = ComputeChecksum(data)
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// ReadSafeTensors reads a state dict written by WriteSafeTensors.
// Tensors are placed on device.
func ReadSafeTensors(path string, device tensor.Device) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: path is chosen by the caller.
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return Decode(file, device)
}

// Decode reads a SafeTensors stream from r.
func Decode(r io.Reader, device tensor.Device) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &rawMap); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	var metadata map[string]string
	if m, ok := rawMap[metadataKey]; ok {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		delete(rawMap, metadataKey)
	}

	headers := make(map[string]TensorHeader, len(rawMap))
	metas := make([]TensorMeta, 0, len(rawMap))
	for name, value := range rawMap {
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h TensorHeader
		if err := json.Unmarshal(value, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal tensor %s: %w", name, err)
		}
		if h.DType != DTypeF64 {
			return nil, nil, fmt.Errorf("tensor %s: %w: %s", name, ErrUnsupportedDType, h.DType)
		}
		headers[name] = h
		metas = append(metas, TensorMeta{Name: name, Offset: h.DataOffsets[0], Size: h.DataOffsets[1] - h.DataOffsets[0]})
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if stored, ok := metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, stored); err != nil {
			return nil, nil, err
		}
	}

	state := make(map[string]*tensor.RawTensor, len(headers))
	for name, h := range headers {
		shape := make(tensor.Shape, len(h.Shape))
		for i, dim := range h.Shape {
			shape[i] = int(dim)
		}
		chunk := data[h.DataOffsets[0]:h.DataOffsets[1]]
		if len(chunk) != shape.NumElements()*8 {
			return nil, nil, fmt.Errorf("tensor %s: %w: %d bytes for shape %v",
				name, tensor.ErrShapeMismatch, len(chunk), shape)
		}
		values := make([]float64, shape.NumElements())
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*8:]))
		}
		raw, err := tensor.RawFromSlice(values, shape, device)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		state[name] = raw
	}
	return state, metadata, nil
}
