// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package random_test

import (
	"testing"

	"github.com/born-ml/reparam/autodiff"
	"github.com/born-ml/reparam/backend/cpu"
	"github.com/born-ml/reparam/random"
	"github.com/born-ml/reparam/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarHelpers(t *testing.T) {
	backend := cpu.New()

	x, err := random.Pareto[float32](backend, random.NewPCG(1), 2.0, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.True(t, x.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, x.DType())

	y, err := random.Rayleigh[float64](backend, random.NewPCG(2), 1.5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, y.NumElements())
	assert.Positive(t, y.Item())
}

func TestTensorHelpers(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float64{1, 2, 4}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)
	x, err := random.ParetoTensor[float32](backend, random.NewPCG(3), a, tensor.Shape{5, 3})
	require.NoError(t, err)
	assert.True(t, x.Shape().Equal(tensor.Shape{5, 3}))

	scale, err := tensor.FromSlice([]int64{0, 3}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	y, err := random.RayleighTensor[float64](backend, random.NewPCG(4), scale, nil)
	require.NoError(t, err)
	assert.Zero(t, y.At(0))
	assert.Positive(t, y.At(1))
}

func TestHelperErrors(t *testing.T) {
	backend := cpu.New()

	_, err := random.Pareto[float32](backend, random.NewPCG(1), 0, nil)
	require.ErrorIs(t, err, random.ErrInvalidParameter)

	var perr *random.ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "a > 0", perr.Constraint)

	scale, err := tensor.FromSlice([]float32{1, -0.5}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	_, err = random.RayleighTensor[float32](backend, random.NewPCG(1), scale, nil)
	require.ErrorIs(t, err, random.ErrInvalidParameter)

	_, err = random.NewFixed([]float32{0.5, 1})
	require.ErrorIs(t, err, random.ErrNoiseRange)
}

func TestFixedNoiseReproducible(t *testing.T) {
	backend := cpu.New()
	gen, err := random.NewFixed([]float32{0.2, 0.4, 0.6, 0.8})
	require.NoError(t, err)

	first, err := random.Pareto[float64](backend, gen, 1.5, tensor.Shape{4})
	require.NoError(t, err)
	second, err := random.Pareto[float64](backend, gen, 1.5, tensor.Shape{4})
	require.NoError(t, err)

	assert.Equal(t, first.Data(), second.Data())
}

func TestDifferentiableSampling(t *testing.T) {
	backend := cpu.New()
	gen, err := random.NewFixed([]float32{0.25, 0.5, 0.75})
	require.NoError(t, err)

	sampler := autodiff.NewSampler(random.NewRayleighOp(backend, gen))
	sampler.Tape().StartRecording()

	scale, err := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	raw, err := sampler.Sample(random.TensorAttrs(tensor.Shape{3}), scale.Raw())
	require.NoError(t, err)

	x := tensor.New[float32](raw, backend)
	grads := autodiff.Backward(x, sampler.Tape())

	// d(sum x)/d(scale) = sum x / scale
	var sum float64
	for _, v := range x.Data() {
		sum += float64(v)
	}
	assert.InDelta(t, sum/2, grads[scale.Raw()].AsFloat32()[0], 1e-5)
}

func TestParseAttrsFacade(t *testing.T) {
	attrs, err := random.ParseAttrs(random.RayleighDistribution{}, map[string]string{"size": "(2, 2)"})
	require.NoError(t, err)
	require.True(t, attrs.IsScalar())
	assert.Equal(t, 1.0, *attrs.Param)

	outs, err := random.NewRayleighOp(cpu.New(), random.NewPCG(5)).Forward(attrs, nil)
	require.NoError(t, err)
	assert.Len(t, outs, 2)
}
