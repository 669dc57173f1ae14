// Package ops defines the operations recorded on a gradient tape.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed before the operation is recorded
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - SampleOp: reparameterized Pareto or Rayleigh sampling with a parameter tensor
package ops

import "github.com/born-ml/reparam/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// MultiOutputOperation represents an operation that produces multiple outputs.
//
// The tape handles these specially by collecting gradients for ALL outputs
// before calling BackwardMulti. Outputs without a gradient get zeros.
type MultiOutputOperation interface {
	Operation

	// Outputs returns all output tensors produced by this operation.
	Outputs() []*tensor.RawTensor

	// BackwardMulti computes gradients for inputs given gradients for ALL outputs.
	// This is used instead of Backward for multi-output operations.
	BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
}

// GradIgnorer is implemented by multi-output operations whose backward pass
// does not read the gradient of some outputs. The tape neither zero-fills those
// gradients nor runs backward when they are the only ones present.
type GradIgnorer interface {
	IgnoresOutputGrad(j int) bool
}

// Releaser is implemented by operations that hold buffers which must be freed
// when the tape is cleared without running backward.
type Releaser interface {
	Release()
}
