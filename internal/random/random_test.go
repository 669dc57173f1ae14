package random

import (
	"sync"
	"testing"

	"github.com/born-ml/reparam/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// countingGenerator records how often it is asked for noise.
type countingGenerator struct {
	calls int
}

func (c *countingGenerator) FillUniform(dst []float32) error {
	c.calls++
	for i := range dst {
		dst[i] = 0.5
	}
	return nil
}

func TestPCG_OpenInterval(t *testing.T) {
	gen := NewPCG(1)
	buf := make([]float32, 100000)
	require.NoError(t, gen.FillUniform(buf))

	for i, v := range buf {
		if !(v > 0 && v < 1) {
			t.Fatalf("sample %d = %v outside (0, 1)", i, v)
		}
	}
}

func TestPCG_Moments(t *testing.T) {
	gen := NewPCG(42)
	buf := make([]float32, 200000)
	require.NoError(t, gen.FillUniform(buf))

	xs := make([]float64, len(buf))
	for i, v := range buf {
		xs[i] = float64(v)
	}
	mean, variance := stat.MeanVariance(xs, nil)

	assert.InDelta(t, 0.5, mean, 0.005)
	assert.InDelta(t, 1.0/12.0, variance, 0.002)
}

func TestPCG_Deterministic(t *testing.T) {
	a := make([]float32, 64)
	b := make([]float32, 64)
	require.NoError(t, NewPCG(7).FillUniform(a))
	require.NoError(t, NewPCG(7).FillUniform(b))
	assert.Equal(t, a, b, "same seed should give the same stream")

	c := make([]float32, 64)
	require.NoError(t, NewPCG(8).FillUniform(c))
	assert.NotEqual(t, a, c, "different seeds should differ")
}

func TestPCG_Concurrent(t *testing.T) {
	gen := NewRandomPCG()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]float32, 1000)
			assert.NoError(t, gen.FillUniform(buf))
		}()
	}
	wg.Wait()
}

func TestFixed(t *testing.T) {
	values := []float32{0.1, 0.5, 0.9}
	gen, err := NewFixed(values)
	require.NoError(t, err)

	values[0] = 0.7 // caller mutation must not leak in
	dst := make([]float32, 3)
	require.NoError(t, gen.FillUniform(dst))
	assert.Equal(t, []float32{0.1, 0.5, 0.9}, dst)

	err = gen.FillUniform(make([]float32, 2))
	assert.ErrorIs(t, err, ErrNoiseLength)
}

func TestFixed_RejectsOutOfRange(t *testing.T) {
	for _, bad := range [][]float32{{0}, {1}, {0.5, -0.1}, {1.5}} {
		_, err := NewFixed(bad)
		assert.ErrorIs(t, err, ErrNoiseRange, "values %v", bad)
	}
}

func TestSampleUniform(t *testing.T) {
	gen := &countingGenerator{}

	noise, err := SampleUniform(gen, tensor.Shape{2, 3}, tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, noise.Shape())
	assert.Equal(t, 6, noise.NumElements())
	assert.Equal(t, tensor.Float32, noise.DType())
	assert.Equal(t, 1, gen.calls, "exactly one draw per call")

	empty, err := SampleUniform(gen, tensor.Shape{0, 3}, tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumElements())
	assert.Equal(t, 1, gen.calls, "empty buffers do not touch the generator")
}

func TestSampleUniform_PropagatesError(t *testing.T) {
	gen, err := NewFixed([]float32{0.5})
	require.NoError(t, err)

	_, err = SampleUniform(gen, tensor.Shape{4}, tensor.CPU)
	assert.ErrorIs(t, err, ErrNoiseLength)
}
