package autodiff

import (
	"fmt"

	"github.com/born-ml/reparam/internal/tensor"
)

// Backward computes gradients of sum(t) for every recorded parameter.
//
// The output gradient is ones with the shape of t. Returns a map from the
// parameter RawTensor to its gradient.
//
// Example:
//
//	sampler.Tape().StartRecording()
//	raw, _ := sampler.Sample(sampling.TensorAttrs(nil), scale.Raw())
//	x := tensor.New[float32](raw, backend)
//	gradients := autodiff.Backward(x, sampler.Tape())
//	grad := gradients[scale.Raw()]
func Backward[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], tape *GradientTape) map[*tensor.RawTensor]*tensor.RawTensor {
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		data := outputGrad.AsFloat32()
		for i := range data {
			data[i] = 1.0
		}
	case tensor.Float64:
		data := outputGrad.AsFloat64()
		for i := range data {
			data[i] = 1.0
		}
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float32/float64 supported)", t.DType()))
	}

	seeds := map[*tensor.RawTensor]*tensor.RawTensor{t.Raw(): outputGrad}
	return tape.BackwardFrom(seeds, t.Backend())
}
