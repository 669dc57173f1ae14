package ops

import (
	"fmt"

	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
)

// SampleOp is one tensor-parameter sampling call: outputs = [sample, noise].
//
// Backward pass:
//   - noise holds d(sample)/d(param) per output element
//   - grad_param = sum over broadcast axes of outputGrad * noise
//
// The noise buffer is consumed by the first backward pass.
type SampleOp struct {
	op       *sampling.Op
	attrs    sampling.Attrs
	inputs   []*tensor.RawTensor // [param]
	outputs  []*tensor.RawTensor // [sample, noise]
	released bool
}

// NewSampleOp creates a new SampleOp from a completed forward call.
func NewSampleOp(op *sampling.Op, attrs sampling.Attrs, param, sample, noise *tensor.RawTensor) *SampleOp {
	return &SampleOp{
		op:      op,
		attrs:   attrs,
		inputs:  []*tensor.RawTensor{param},
		outputs: []*tensor.RawTensor{sample, noise},
	}
}

// Backward computes the parameter gradient when only the sample has a gradient.
func (s *SampleOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return s.BackwardMulti([]*tensor.RawTensor{outputGrad, nil}, backend)
}

// BackwardMulti computes the parameter gradient. The noise gradient is ignored.
func (s *SampleOp) BackwardMulti(outputGrads []*tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	if s.released {
		panic(fmt.Sprintf("%s backward: noise buffer already released", s.op.Distribution().Name()))
	}

	var noiseGrad *tensor.RawTensor
	if len(outputGrads) > 1 {
		noiseGrad = outputGrads[1]
	}

	grads, err := s.op.Backward(s.attrs, []*tensor.RawTensor{
		outputGrads[0], noiseGrad, s.inputs[0], s.outputs[0], s.outputs[1],
	})
	if err != nil {
		panic(fmt.Sprintf("sample backward: %v", err))
	}

	s.Release()
	return grads
}

// IgnoresOutputGrad reports true for the noise output.
func (s *SampleOp) IgnoresOutputGrad(j int) bool {
	return j == 1
}

// Release frees the noise buffer. It is safe to call more than once.
func (s *SampleOp) Release() {
	if s.released {
		return
	}
	s.released = true
	s.outputs[1].Release()
}

// Released reports whether the noise buffer was freed.
func (s *SampleOp) Released() bool {
	return s.released
}

// Inputs returns the input tensors [param].
func (s *SampleOp) Inputs() []*tensor.RawTensor {
	return s.inputs
}

// Output returns the sample tensor.
func (s *SampleOp) Output() *tensor.RawTensor {
	return s.outputs[0]
}

// Outputs returns [sample, noise].
func (s *SampleOp) Outputs() []*tensor.RawTensor {
	return s.outputs
}
