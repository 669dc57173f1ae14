// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package random

import (
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
)

// Backend runs the sampling kernels.
type Backend = tensor.Backend

// Shape is a tensor shape.
type Shape = tensor.Shape

// Pareto draws Pareto samples with a scalar shape a.
// A nil size yields a single value.
//
// Example:
//
//	x, err := random.Pareto[float32](backend, random.NewPCG(1), 2.0, tensor.Shape{2, 3})
func Pareto[T tensor.Float, B tensor.Backend](b B, gen Generator, a float64, size Shape) (*tensor.Tensor[T, B], error) {
	return sampleScalar[T](sampling.Pareto{}, b, gen, a, size)
}

// ParetoTensor draws Pareto samples with a broadcast shape tensor a.
// A nil size yields the shape of a.
func ParetoTensor[T tensor.Float, P tensor.DType, B tensor.Backend](b B, gen Generator, a *tensor.Tensor[P, B], size Shape) (*tensor.Tensor[T, B], error) {
	return sampleTensor[T](sampling.Pareto{}, b, gen, a, size)
}

// Rayleigh draws Rayleigh samples with a scalar scale.
// A nil size yields a single value.
//
// Example:
//
//	x, err := random.Rayleigh[float64](backend, random.NewPCG(1), 1.5, tensor.Shape{100})
func Rayleigh[T tensor.Float, B tensor.Backend](b B, gen Generator, scale float64, size Shape) (*tensor.Tensor[T, B], error) {
	return sampleScalar[T](sampling.Rayleigh{}, b, gen, scale, size)
}

// RayleighTensor draws Rayleigh samples with a broadcast scale tensor.
// A nil size yields the shape of scale.
func RayleighTensor[T tensor.Float, P tensor.DType, B tensor.Backend](b B, gen Generator, scale *tensor.Tensor[P, B], size Shape) (*tensor.Tensor[T, B], error) {
	return sampleTensor[T](sampling.Rayleigh{}, b, gen, scale, size)
}

func newOp[T tensor.Float](dist sampling.Distribution, b tensor.Backend, gen Generator) *sampling.Op {
	cfg := sampling.DefaultConfig()
	cfg.DType = tensor.DataTypeOf[T]()
	return sampling.NewOp(dist, b, gen, cfg)
}

func sampleScalar[T tensor.Float, B tensor.Backend](dist sampling.Distribution, b B, gen Generator, p float64, size Shape) (*tensor.Tensor[T, B], error) {
	attrs := sampling.ScalarAttrs(p, size)
	attrs.Context = deviceContext(b.Device())

	outs, err := newOp[T](dist, b, gen).Forward(attrs, nil)
	if err != nil {
		return nil, err
	}
	outs[1].Release()
	return tensor.New[T, B](outs[0], b), nil
}

func sampleTensor[T tensor.Float, P tensor.DType, B tensor.Backend](dist sampling.Distribution, b B, gen Generator, param *tensor.Tensor[P, B], size Shape) (*tensor.Tensor[T, B], error) {
	attrs := sampling.TensorAttrs(size)
	attrs.Context = deviceContext(b.Device())

	outs, err := newOp[T](dist, b, gen).Forward(attrs, []*tensor.RawTensor{param.Raw()})
	if err != nil {
		return nil, err
	}
	outs[1].Release()
	return tensor.New[T, B](outs[0], b), nil
}

// deviceContext returns the context string naming device.
func deviceContext(device tensor.Device) string {
	if device == tensor.CPU {
		return "cpu"
	}
	return "gpu"
}
