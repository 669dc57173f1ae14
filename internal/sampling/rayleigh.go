package sampling

import "math"

// Rayleigh samples the Rayleigh distribution with the given scale:
//
//	x = scale * sqrt(-2 log(u))
type Rayleigh struct{}

var _ Distribution = Rayleigh{}

// Name returns "rayleigh".
func (Rayleigh) Name() string { return "rayleigh" }

// ParamName returns "scale".
func (Rayleigh) ParamName() string { return "scale" }

// Constraint returns "scale >= 0".
func (Rayleigh) Constraint() string { return "scale >= 0" }

// DefaultParam returns 1.0.
func (Rayleigh) DefaultParam() (float64, bool) { return 1.0, true }

// Valid reports scale >= 0. Zero is legal and yields all-zero samples.
func (Rayleigh) Valid(scale float64) bool { return scale >= 0 }

func (r Rayleigh) scalarKernel() sampleFunc {
	return r.tensorKernel()
}

// tensorKernel stores d(x)/d(scale) = sqrt(-2 log(u)) in the noise slot.
func (Rayleigh) tensorKernel() sampleFunc {
	return func(u float32, scale float64) (float64, float32) {
		t := float32(math.Sqrt(-2 * math.Log(float64(u))))
		return scale * float64(t), t
	}
}
