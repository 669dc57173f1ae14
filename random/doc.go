// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random draws reparameterized Pareto and Rayleigh samples.
//
// # Overview
//
// Every sampling call consumes one block of uniform noise from an explicit
// Generator. With a scalar parameter all outputs share it; with a parameter
// tensor it is broadcast to the output shape and the call is differentiable
// with respect to the parameter (see package autodiff).
//
//   - Pareto (Lomax form): x = exp(-log(u) / a) - 1, a > 0
//   - Rayleigh: x = scale * sqrt(-2 log(u)), scale >= 0
//
// # Basic Usage
//
//	backend := cpu.New()
//	gen := random.NewPCG(42)
//
//	x, err := random.Pareto[float32](backend, gen, 2.0, tensor.Shape{2, 3})
//
//	scale, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{1, 3}, backend)
//	y, err := random.RayleighTensor[float64](backend, gen, scale, tensor.Shape{4, 3})
//
// # Errors
//
// Out-of-domain parameters fail with a *ParamError that matches
// ErrInvalidParameter under errors.Is. No output is returned with an error.
//
// # Determinism
//
// NewFixed replays injected noise, so repeated calls give bit-identical samples.
package random
