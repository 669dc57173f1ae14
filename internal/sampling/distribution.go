// Package sampling implements reparameterized elementwise samplers for the Pareto
// and Rayleigh distributions.
//
// A forward call draws one uniform noise buffer, validates the parameter, and maps
// (noise, parameter) to samples either with a single scalar parameter or with a
// parameter tensor broadcast to the output shape. On the tensor path the noise
// buffer is overwritten with d(sample)/d(parameter), so the matching backward call
// only has to weight it by the output gradient and sum it back onto the parameter
// shape.
package sampling

// sampleFunc maps one uniform sample u and a parameter value p to the output
// value and to the value left behind in the noise slot.
type sampleFunc func(u float32, p float64) (out float64, saved float32)

// Distribution describes one single-parameter reparameterizable distribution.
// The set is closed: Pareto and Rayleigh.
type Distribution interface {
	// Name is the operator name used in errors and logs.
	Name() string

	// ParamName is the attribute key of the parameter ("a", "scale").
	ParamName() string

	// Constraint is the human-readable domain, e.g. "a > 0".
	Constraint() string

	// DefaultParam returns the scalar parameter used when the attribute is absent.
	DefaultParam() (float64, bool)

	// Valid reports whether v lies in the parameter domain. NaN is never valid.
	Valid(v float64) bool

	scalarKernel() sampleFunc
	tensorKernel() sampleFunc
}
