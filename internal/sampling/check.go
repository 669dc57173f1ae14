package sampling

import (
	"fmt"
	"sync/atomic"

	"github.com/born-ml/reparam/internal/tensor"
)

// Validity flag sentinels.
const (
	flagValid   int32 = 0
	flagInvalid int32 = -1
)

// ValidityFlag is a sticky flag raised by any worker that sees an out-of-domain
// parameter. All writers store the same sentinel, so their order does not matter.
type ValidityFlag struct {
	state atomic.Int32
}

// Invalidate raises the flag.
func (f *ValidityFlag) Invalidate() {
	f.state.Store(flagInvalid)
}

// Valid reads the flag back. Call it only after the check launch returned.
func (f *ValidityFlag) Valid() bool {
	return f.state.Load() == flagValid
}

// CheckDomain examines every element of param in parallel and returns the flag.
// There is no early exit: every element is checked.
func CheckDomain(b tensor.Backend, param *tensor.RawTensor, valid func(float64) bool) (*ValidityFlag, error) {
	flag := &ValidityFlag{}

	switch param.DType() {
	case tensor.Float32:
		checkElements(b, param.AsFloat32(), valid, flag)
	case tensor.Float64:
		checkElements(b, param.AsFloat64(), valid, flag)
	case tensor.Int32:
		checkElements(b, param.AsInt32(), valid, flag)
	case tensor.Int64:
		checkElements(b, param.AsInt64(), valid, flag)
	default:
		return nil, fmt.Errorf("%w: parameter dtype %s", ErrUnsupportedDType, param.DType())
	}

	return flag, nil
}

func checkElements[I tensor.DType](b tensor.Backend, params []I, valid func(float64) bool, flag *ValidityFlag) {
	b.Launch(len(params), func(i int) {
		if !valid(float64(params[i])) {
			flag.Invalidate()
		}
	})
}
