// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode differentiation for the samplers.
//
// A Sampler runs sampling calls and records those with a parameter tensor on a
// gradient tape. Backward then propagates the output gradient to the parameters
// through the reparameterized derivative kept in each call's noise buffer.
//
// Example:
//
//	import (
//	    "github.com/born-ml/reparam/autodiff"
//	    "github.com/born-ml/reparam/backend/cpu"
//	    "github.com/born-ml/reparam/random"
//	    "github.com/born-ml/reparam/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    sampler := autodiff.NewSampler(random.NewRayleighOp(backend, random.NewPCG(7)))
//	    sampler.Tape().StartRecording()
//
//	    scale, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend)
//	    raw, _ := sampler.Sample(random.TensorAttrs(tensor.Shape{4, 3}), scale.Raw())
//
//	    grads := autodiff.Backward(tensor.New[float32](raw, backend), sampler.Tape())
//	    fmt.Println(grads[scale.Raw()].AsFloat32())
//	}
package autodiff

import (
	"github.com/born-ml/reparam/internal/autodiff"
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
)

// Sampler runs sampling calls and records the differentiable ones on a tape.
type Sampler = autodiff.Sampler

// NewSampler creates a Sampler with its own tape.
func NewSampler(op *sampling.Op) *Sampler {
	return autodiff.NewSampler(op)
}

// NewSamplerWithTape creates a Sampler recording on a shared tape.
func NewSamplerWithTape(op *sampling.Op, tape *GradientTape) *Sampler {
	return autodiff.NewSamplerWithTape(op, tape)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// Backward computes gradients of sum(t) via backpropagation.
func Backward[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], tape *GradientTape) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, tape)
}
