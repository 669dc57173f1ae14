package sampling

import (
	"errors"
	"fmt"

	"github.com/born-ml/reparam/internal/tensor"
)

var (
	// ErrInvalidParameter is returned when a distribution parameter violates its domain.
	ErrInvalidParameter = errors.New("invalid distribution parameter")

	// ErrUnsupportedDType is returned for tensor dtypes a kernel cannot handle.
	ErrUnsupportedDType = errors.New("unsupported dtype")

	// ErrDeviceMismatch is returned when the device context does not match the backend.
	ErrDeviceMismatch = errors.New("device context does not match backend")

	// ErrInputCount is returned when the number of inputs does not match the attributes.
	ErrInputCount = errors.New("unexpected number of inputs")

	// ErrUnsupportedRank is returned when a shape exceeds tensor.MaxBroadcastRank.
	ErrUnsupportedRank = tensor.ErrUnsupportedRank
)

// ParamError reports a domain violation for one operator call.
// It unwraps to ErrInvalidParameter.
type ParamError struct {
	Op         string // distribution name, e.g. "pareto"
	Constraint string // violated constraint, e.g. "a > 0"
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: ValueError: expect %s", e.Op, e.Constraint)
}

// Unwrap returns ErrInvalidParameter.
func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}
