// Package serialization stores sampling results in the SafeTensors format, so
// samples and their derivative buffers can be inspected or replayed elsewhere.
package serialization

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/reparam/internal/tensor"
)

const metadataKey = "__metadata__"

// maxHeaderSize bounds the JSON header read from untrusted files.
const maxHeaderSize = 100 << 20

// ErrFormat is returned for files that are not valid SafeTensors.
var ErrFormat = errors.New("invalid safetensors file")

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteFile writes tensors to a SafeTensors file at path.
func WriteFile(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for exports
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(file, tensors, metadata); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Write encodes tensors in SafeTensors format.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// Tensors are written in alphabetical order by name.
func Write(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		raw := tensors[name]
		if raw.IsReleased() {
			return fmt.Errorf("tensor %s: buffer released", name)
		}
		dtype, err := dtypeToSafeTensors(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}

		size := int64(raw.ByteSize())
		header[name] = SafeTensorHeader{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

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
	for _, name := range names {
		raw := tensors[name]
		if _, err := w.Write(raw.Data()[:raw.ByteSize()]); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return nil
}

// ReadFile loads every tensor of a SafeTensors file onto device.
func ReadFile(path string, device tensor.Device) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return Read(file, device)
}

// Read decodes a SafeTensors stream.
func Read(r io.Reader, device tensor.Device) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("%w: header size: %w", ErrFormat, err)
	}
	if headerSize == 0 || headerSize > maxHeaderSize {
		return nil, nil, fmt.Errorf("%w: header size %d", ErrFormat, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrFormat, err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, fmt.Errorf("%w: header JSON: %w", ErrFormat, err)
	}

	var metadata map[string]string
	if raw, ok := entries[metadataKey]; ok {
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, nil, fmt.Errorf("%w: metadata: %w", ErrFormat, err)
		}
		delete(entries, metadataKey)
	}

	headers := make(map[string]SafeTensorHeader, len(entries))
	for name, raw := range entries {
		var h SafeTensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %s: %w", ErrFormat, name, err)
		}
		if err := checkOffsets(h); err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %s: %w", ErrFormat, name, err)
		}
		headers[name] = h
	}

	// The body is bounded by the input itself, never by header claims.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: tensor data: %w", ErrFormat, err)
	}

	tensors := make(map[string]*tensor.RawTensor, len(headers))
	for name, h := range headers {
		raw, err := decodeTensor(h, data, device)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %s: %w", ErrFormat, name, err)
		}
		tensors[name] = raw
	}

	return tensors, metadata, nil
}

// checkOffsets verifies that a header entry describes exactly the bytes its
// dtype and shape need.
func checkOffsets(h SafeTensorHeader) error {
	dtype, err := dtypeFromSafeTensors(h.DType)
	if err != nil {
		return err
	}

	size := int64(dtype.Size())
	for _, dim := range h.Shape {
		if dim < 0 {
			return fmt.Errorf("negative dimension in shape %v", h.Shape)
		}
		if dim > 0 && size > math.MaxInt64/dim {
			return fmt.Errorf("shape %v overflows", h.Shape)
		}
		size *= dim
	}

	start, end := h.DataOffsets[0], h.DataOffsets[1]
	if start < 0 || end < start {
		return fmt.Errorf("invalid data offsets [%d, %d)", start, end)
	}
	if end-start != size {
		return fmt.Errorf("data offsets [%d, %d) hold %d bytes, shape %v needs %d",
			start, end, end-start, h.Shape, size)
	}
	return nil
}

func decodeTensor(h SafeTensorHeader, data []byte, device tensor.Device) (*tensor.RawTensor, error) {
	start, end := h.DataOffsets[0], h.DataOffsets[1]
	if end > int64(len(data)) {
		return nil, fmt.Errorf("data offsets [%d, %d) exceed %d data bytes", start, end, len(data))
	}

	dtype, err := dtypeFromSafeTensors(h.DType)
	if err != nil {
		return nil, err
	}

	shape := make(tensor.Shape, len(h.Shape))
	for i, dim := range h.Shape {
		shape[i] = int(dim)
	}

	raw, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data[start:end])
	return raw, nil
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return "F32", nil
	case tensor.Float64:
		return "F64", nil
	case tensor.Int32:
		return "I32", nil
	case tensor.Int64:
		return "I64", nil
	default:
		return "", fmt.Errorf("unsupported dtype %s", dt)
	}
}

func dtypeFromSafeTensors(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	case "I32":
		return tensor.Int32, nil
	case "I64":
		return tensor.Int64, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %q", s)
	}
}
