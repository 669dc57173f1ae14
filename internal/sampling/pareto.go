package sampling

import "math"

// Pareto samples the Pareto II (Lomax) distribution with shape a and unit scale:
//
//	x = exp(-log(u) / a) - 1
type Pareto struct{}

var _ Distribution = Pareto{}

// Name returns "pareto".
func (Pareto) Name() string { return "pareto" }

// ParamName returns "a".
func (Pareto) ParamName() string { return "a" }

// Constraint returns "a > 0".
func (Pareto) Constraint() string { return "a > 0" }

// DefaultParam reports that a has no default: an absent a selects the tensor path.
func (Pareto) DefaultParam() (float64, bool) { return 0, false }

// Valid reports a > 0.
func (Pareto) Valid(a float64) bool { return a > 0 }

// scalarKernel leaves the noise untouched; the scalar path has no gradient.
func (Pareto) scalarKernel() sampleFunc {
	return func(u float32, a float64) (float64, float32) {
		return math.Exp(-math.Log(float64(u))/a) - 1, u
	}
}

// tensorKernel stores d(x)/d(a) = log(u) * (x + 1) / a^2 in the noise slot.
func (Pareto) tensorKernel() sampleFunc {
	return func(u float32, a float64) (float64, float32) {
		nlog := float32(-math.Log(float64(u)))
		out := math.Exp(float64(nlog)/a) - 1
		return out, float32(-float64(nlog) * (out + 1) / (a * a))
	}
}
