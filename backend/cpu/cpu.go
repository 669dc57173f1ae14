// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/reparam/internal/backend/cpu"
	"github.com/born-ml/reparam/internal/parallel"
	"github.com/born-ml/reparam/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend runs every kernel launch as a goroutine fan-out over
// contiguous chunks of the index space.
type Backend = internalcpu.CPUBackend

// Config controls how launches are split across goroutines.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend using all available CPUs.
//
// Example:
//
//	import (
//	    "github.com/born-ml/reparam/backend/cpu"
//	    "github.com/born-ml/reparam/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
//
// Example:
//
//	backend := cpu.NewWithConfig(cpu.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1024})
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// ConfigFromEnv returns DefaultConfig overridden by BORN_NUM_WORKERS and BORN_MIN_CHUNK.
func ConfigFromEnv() (Config, error) {
	return parallel.ConfigFromEnv()
}
