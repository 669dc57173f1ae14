// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the sampling kernels.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Goroutine fan-out over contiguous index chunks
//   - Deterministic chunk boundaries for order-stable reductions
//   - Float32 and Float64 support
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/reparam/backend/cpu"
//	    "github.com/born-ml/reparam/random"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x, _ := random.Rayleigh[float32](backend, random.NewPCG(1), 2.0, tensor.Shape{2, 3})
//	}
//
// # Configuration
//
// BORN_NUM_WORKERS and BORN_MIN_CHUNK override the worker count and the
// minimum chunk size when the backend is built from ConfigFromEnv.
// BORN_NUM_WORKERS=1 runs every launch sequentially.
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. A launch returns only after
// every work item completed, so results are visible to the caller.
package cpu
