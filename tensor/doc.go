// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for the reparam samplers.
//
// # Overview
//
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcast resolution for sampling parameters
//   - Reference-counted buffers
//   - Device abstraction and device context parsing
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/reparam/tensor"
//	    "github.com/born-ml/reparam/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    scale, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend)
//	    fmt.Println(scale.Shape()) // (1, 3)
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point, sample and gradient tensors)
//   - int32, int64 (signed integers, accepted as sampling parameters)
//
// # Broadcasting
//
// A parameter tensor broadcasts to the requested output shape following NumPy rules:
//
//	geo, _ := tensor.ResolveBroadcast(tensor.Shape{3}, false, tensor.Shape{2, 2, 3})
//	// geo.Out = (2, 2, 3), geo.Stride = [0 0 1]
//
// Ranks above MaxBroadcastRank are rejected with ErrUnsupportedRank.
//
// # Memory Management
//
// The underlying data is reference-counted. Clone shares a buffer and Release
// drops one reference; the buffer is freed with the last one.
package tensor
