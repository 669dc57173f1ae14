package sampling

import (
	"math"
	"testing"

	"github.com/born-ml/reparam/internal/random"
	"github.com/born-ml/reparam/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const momentSamples = 20000

func sampleMoments(t *testing.T, op *Op, p float64) (mean, variance float64) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DType = tensor.Float64
	op.cfg = cfg

	outs, err := op.Forward(ScalarAttrs(p, tensor.Shape{momentSamples}), nil)
	require.NoError(t, err)
	return stat.MeanVariance(outs[0].AsFloat64(), nil)
}

func TestParetoMatchesLomax(t *testing.T) {
	for _, a := range []float64{5, 8} {
		// Lomax(a) is Pareto(xm=1, a) shifted left by one.
		ref := distuv.Pareto{Xm: 1, Alpha: a}
		mean, variance := sampleMoments(t, NewPareto(testBackend(), random.NewPCG(uint64(a)), DefaultConfig()), a)

		assert.InDelta(t, ref.Mean()-1, mean, 0.05, "a=%v mean", a)
		assert.InEpsilon(t, ref.Variance(), variance, 0.25, "a=%v variance", a)
	}
}

func TestRayleighMatchesWeibull(t *testing.T) {
	for _, scale := range []float64{0.5, 2} {
		// Rayleigh(scale) is Weibull(k=2, lambda=scale*sqrt2).
		ref := distuv.Weibull{K: 2, Lambda: scale * math.Sqrt2}
		mean, variance := sampleMoments(t, NewRayleigh(testBackend(), random.NewPCG(17), DefaultConfig()), scale)

		assert.InEpsilon(t, ref.Mean(), mean, 0.02, "scale=%v mean", scale)
		assert.InEpsilon(t, ref.Variance(), variance, 0.05, "scale=%v variance", scale)
	}
}

func TestDistributionDomains(t *testing.T) {
	tests := []struct {
		dist  Distribution
		value float64
		valid bool
	}{
		{Pareto{}, 1e-12, true},
		{Pareto{}, 0, false},
		{Pareto{}, math.Inf(1), true},
		{Pareto{}, math.NaN(), false},
		{Rayleigh{}, 0, true},
		{Rayleigh{}, -1e-12, false},
		{Rayleigh{}, math.NaN(), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.dist.Valid(tt.value), "%s(%v)", tt.dist.Name(), tt.value)
	}
}
