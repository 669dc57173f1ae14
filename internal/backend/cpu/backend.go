// Package cpu implements the CPU backend: kernels run as goroutine fan-out over
// contiguous chunks of the index space.
package cpu

import (
	"fmt"

	"github.com/born-ml/reparam/internal/parallel"
	"github.com/born-ml/reparam/internal/tensor"
)

// CPUBackend implements tensor.Backend on the host.
type CPUBackend struct {
	device tensor.Device
	cfg    parallel.Config
}

// New creates a new CPU backend with parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		cfg:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Config returns the parallel configuration used for launches.
func (cpu *CPUBackend) Config() parallel.Config {
	return cpu.cfg
}

// Launch runs kernel(i) for i in [0, n) and returns once all items completed.
func (cpu *CPUBackend) Launch(n int, kernel func(i int)) {
	parallel.For(n, kernel, cpu.cfg)
}

// LaunchChunks runs kernel once per contiguous chunk of [0, n).
func (cpu *CPUBackend) LaunchChunks(n int, kernel func(chunk, start, end int)) int {
	return parallel.ForChunks(n, kernel, cpu.cfg)
}

// Add performs element-wise addition of two same-shape float tensors.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("add: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("add: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	result, err := tensor.NewRaw(a.Shape(), a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("add: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		addVectorized(cpu, result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		addVectorized(cpu, result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		panic(fmt.Sprintf("add: unsupported dtype %s", a.DType()))
	}

	return result
}

func addVectorized[T tensor.Float](cpu *CPUBackend, dst, a, b []T) {
	cpu.Launch(len(dst), func(i int) {
		dst[i] = a[i] + b[i]
	})
}
