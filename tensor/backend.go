// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/reparam/internal/tensor"

// Backend defines the interface that all compute backends must implement.
// Backends run the sampling kernels.
//
// Implementations:
//   - backend/cpu: Pure Go goroutine fan-out over index chunks
//
// Example:
//
//	import (
//	    "github.com/born-ml/reparam/tensor"
//	    "github.com/born-ml/reparam/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
type Backend interface {
	// Kernel launches. Both return after every work item completed.
	Launch(n int, kernel func(i int))                           // One work item per index.
	LaunchChunks(n int, kernel func(chunk, start, end int)) int // Contiguous chunks, returns chunk count.

	// Element-wise binary operations.
	Add(a, b *RawTensor) *RawTensor // Element-wise addition (gradient accumulation).

	// Metadata.
	Name() string   // Backend name (e.g., "CPU").
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
