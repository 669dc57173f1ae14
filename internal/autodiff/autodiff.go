// Package autodiff records sampling calls on a gradient tape and runs the
// reparameterized backward pass over them.
//
// Architecture:
//   - Sampler: binds a sampling.Op to a GradientTape
//   - GradientTape: records operations during the forward pass
//   - ops.SampleOp: keeps the noise buffer of one call alive until backward
//   - Reverse-mode AD: gradients of shared parameters accumulate with Backend.Add
//
// Usage:
//
//	op := sampling.NewRayleigh(cpu.New(), random.NewPCG(7), sampling.DefaultConfig())
//	sampler := autodiff.NewSampler(op)
//	sampler.Tape().StartRecording()
//
//	x, _ := sampler.Sample(sampling.TensorAttrs(tensor.Shape{4, 3}), scale)
//	grads := sampler.Tape().Backward(ones, op.Backend())
//	dScale := grads[scale]
package autodiff

import (
	"github.com/born-ml/reparam/internal/autodiff/ops"
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
)

// Sampler runs sampling calls and records the differentiable ones on a tape.
type Sampler struct {
	op   *sampling.Op
	tape *GradientTape
}

// NewSampler creates a Sampler with its own tape.
func NewSampler(op *sampling.Op) *Sampler {
	return NewSamplerWithTape(op, NewGradientTape())
}

// NewSamplerWithTape creates a Sampler that records on tape. Several samplers
// may share one tape.
func NewSamplerWithTape(op *sampling.Op, tape *GradientTape) *Sampler {
	return &Sampler{
		op:   op,
		tape: tape,
	}
}

// Tape returns the gradient tape for manual control.
func (s *Sampler) Tape() *GradientTape {
	return s.tape
}

// Op returns the wrapped sampling operator.
func (s *Sampler) Op() *sampling.Op {
	return s.op
}

// Sample draws one sample tensor. param must be nil when attrs carries a scalar
// parameter.
//
// The call is recorded when the tape is recording, the parameter is a tensor,
// and its dtype can carry a gradient. Otherwise the noise buffer is released
// immediately.
func (s *Sampler) Sample(attrs sampling.Attrs, param *tensor.RawTensor) (*tensor.RawTensor, error) {
	var inputs []*tensor.RawTensor
	if param != nil {
		inputs = []*tensor.RawTensor{param}
	}

	outs, err := s.op.Forward(attrs, inputs)
	if err != nil {
		return nil, err
	}
	sample, noise := outs[0], outs[1]

	if s.tape.IsRecording() && param != nil && param.DType().IsFloat() {
		s.tape.Record(ops.NewSampleOp(s.op, attrs, param, sample, noise))
	} else {
		noise.Release()
	}

	return sample, nil
}
