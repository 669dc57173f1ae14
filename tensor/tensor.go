// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the tensors consumed and produced
// by the reparameterized samplers.
//
// The package defines core interfaces and types:
//   - Tensor[T, B]: High-level generic tensor with type safety
//   - RawTensor: Low-level tensor representation passed to the sampling operators
//   - Backend: Interface for device-specific kernel launches
//   - Shape, DataType, Device, Context: Core type definitions
//
// Example:
//
//	backend := cpu.New()
//	a := tensor.Full[float32](tensor.Shape{1, 3}, 2.0, backend)
package tensor

import (
	"github.com/born-ml/reparam/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64.
type DType = tensor.DType

// Float is a constraint for floating-point data types.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Context is a parsed device context string such as "cpu" or "gpu(0)".
type Context = tensor.Context

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
// Shape{} is the 0-d shape holding a single value.
type Shape = tensor.Shape

// Broadcast is the geometry of one broadcast sampling launch.
type Broadcast = tensor.Broadcast

// MaxBroadcastRank is the highest rank the broadcast kernels support.
const MaxBroadcastRank = tensor.MaxBroadcastRank

// Errors returned by shape resolution.
var (
	ErrUnsupportedRank   = tensor.ErrUnsupportedRank
	ErrIncompatibleShape = tensor.ErrIncompatibleShape
)

// Tensor is a generic type-safe tensor.
//
// T is the data type (float32, float64, int32, int64).
// B is the backend implementation.
//
// Example:
//
//	backend := cpu.New()
//	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
//	fmt.Println(x.At(1)) // 2
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Creation functions

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	backend := cpu.New()
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New creates a tensor from a raw tensor.
//
// This is a low-level function. Most users should use creation functions like
// Zeros, Full, or FromSlice instead.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw creates a new raw tensor with the given shape, dtype, and device.
//
// This is a low-level function. Most users should use high-level creation functions instead.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Utility functions

// BroadcastShapes computes the broadcast shape for two shapes following NumPy broadcasting rules.
// Returns the resulting shape and whether either operand needs broadcasting.
//
// Example:
//
//	resultShape, needsBroadcast, err := tensor.BroadcastShapes(
//	    tensor.Shape{3, 1},
//	    tensor.Shape{3, 4},
//	)
//	// resultShape = [3, 4], needsBroadcast = true
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// ResolveBroadcast computes the output shape and parameter strides of a
// sampling call. See the internal documentation for the rules.
//
// Example:
//
//	geo, _ := tensor.ResolveBroadcast(tensor.Shape{1, 3}, false, tensor.Shape{4, 3})
//	// geo.Out = (4, 3), geo.Stride = [0 1]
func ResolveBroadcast(paramShape Shape, scalar bool, override Shape) (*Broadcast, error) {
	return tensor.ResolveBroadcast(paramShape, scalar, override)
}

// ParseShape parses a shape such as "(2, 3)", "[4]" or "2,3".
func ParseShape(s string) (Shape, error) {
	return tensor.ParseShape(s)
}

// ParseContext parses a device context of the form [cpu|gpu|cpu_pinned](n).
func ParseContext(s string) (Context, error) {
	return tensor.ParseContext(s)
}
