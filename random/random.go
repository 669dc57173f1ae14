// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package random

import (
	internalrandom "github.com/born-ml/reparam/internal/random"
	"github.com/born-ml/reparam/internal/sampling"
)

// Generator fills buffers with independent standard-uniform samples in (0, 1).
type Generator = internalrandom.Generator

// PCG draws uniform noise from a seeded PCG stream.
type PCG = internalrandom.PCG

// Fixed replays an injected noise buffer.
type Fixed = internalrandom.Fixed

// NewPCG creates a generator seeded with seed.
func NewPCG(seed uint64) *PCG {
	return internalrandom.NewPCG(seed)
}

// NewRandomPCG creates a generator with a random seed.
func NewRandomPCG() *PCG {
	return internalrandom.NewRandomPCG()
}

// NewFixed creates a generator that always yields a copy of values.
// Every value must lie in (0, 1).
func NewFixed(values []float32) (*Fixed, error) {
	return internalrandom.NewFixed(values)
}

// Operator types.
type (
	// Op is one sampling operator bound to a distribution, a backend and a generator.
	Op = sampling.Op

	// Attrs are the operator attributes: scalar parameter, size and device context.
	Attrs = sampling.Attrs

	// Config configures an Op.
	Config = sampling.Config

	// Distribution describes a single-parameter reparameterizable distribution.
	Distribution = sampling.Distribution

	// ParetoDistribution is the Pareto (Lomax) distribution with shape a.
	ParetoDistribution = sampling.Pareto

	// RayleighDistribution is the Rayleigh distribution with a scale parameter.
	RayleighDistribution = sampling.Rayleigh

	// ParamError reports a parameter domain violation.
	ParamError = sampling.ParamError
)

// Errors.
var (
	ErrInvalidParameter = sampling.ErrInvalidParameter
	ErrUnsupportedDType = sampling.ErrUnsupportedDType
	ErrDeviceMismatch   = sampling.ErrDeviceMismatch
	ErrInputCount       = sampling.ErrInputCount
	ErrUnsupportedRank  = sampling.ErrUnsupportedRank
	ErrNoiseLength      = internalrandom.ErrNoiseLength
	ErrNoiseRange       = internalrandom.ErrNoiseRange
)

// DefaultConfig returns float32 samples and the default logger.
func DefaultConfig() Config {
	return sampling.DefaultConfig()
}

// NewParetoOp creates a Pareto operator with DefaultConfig.
func NewParetoOp(backend Backend, gen Generator) *Op {
	return sampling.NewPareto(backend, gen, sampling.DefaultConfig())
}

// NewRayleighOp creates a Rayleigh operator with DefaultConfig.
func NewRayleighOp(backend Backend, gen Generator) *Op {
	return sampling.NewRayleigh(backend, gen, sampling.DefaultConfig())
}

// ScalarAttrs returns attributes for the scalar-parameter path.
func ScalarAttrs(param float64, size Shape) Attrs {
	return sampling.ScalarAttrs(param, size)
}

// TensorAttrs returns attributes for the tensor-parameter path.
func TensorAttrs(size Shape) Attrs {
	return sampling.TensorAttrs(size)
}

// ParseAttrs builds Attrs for dist from their string dictionary form.
func ParseAttrs(dist Distribution, dict map[string]string) (Attrs, error) {
	return sampling.ParseAttrs(dist, dict)
}
