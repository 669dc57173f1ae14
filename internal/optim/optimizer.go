// Package optim implements gradient-based updates of distribution parameters.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - ClampMin: projection back into a parameter domain after a step
//
// Gradients come from the reparameterized backward pass, so a loss over
// samples can be minimized with respect to the distribution parameters.
//
// Example usage:
//
//	optimizer := optim.NewAdam([]*tensor.Tensor[float32, B]{scale}, optim.AdamConfig{LR: 0.05}, backend)
//
//	for step := range steps {
//	    tape.StartRecording()
//	    x, _ := sampler.Sample(sampling.TensorAttrs(size), scale.Raw())
//	    grads := tape.BackwardFrom(lossGrad(x), backend)
//	    tape.Clear()
//
//	    optimizer.Step(grads)
//	    optim.ClampMin(optimizer.Params(), 1e-3)
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/born-ml/reparam/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Takes a gradient map from the tape and updates parameters in-place.
	// The gradient map should contain RawTensor -> gradient mapping.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// getGradient retrieves the gradient of param and attaches it with SetGrad.
//
// Returns nil if no gradient is found (parameter wasn't sampled from) or the
// gradient is not float32.
func getGradient[B tensor.Backend](param *tensor.Tensor[float32, B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.Tensor[float32, B] {
	if param == nil {
		return nil
	}
	raw, ok := grads[param.Raw()]
	if !ok || raw.DType() != tensor.Float32 || !raw.Shape().Equal(param.Shape()) {
		return nil
	}
	grad := tensor.New[float32](raw, param.Backend())
	param.SetGrad(grad)
	return grad
}

func zeroGrads[B tensor.Backend](params []*tensor.Tensor[float32, B]) {
	for _, p := range params {
		p.SetGrad(nil)
	}
}

// ClampMin raises every parameter element below lo to lo.
// Pareto shapes must stay positive after a step; Rayleigh scales non-negative.
func ClampMin[B tensor.Backend](params []*tensor.Tensor[float32, B], lo float32) {
	for _, p := range params {
		data := p.Data()
		p.Backend().Launch(len(data), func(i int) {
			if data[i] < lo {
				data[i] = lo
			}
		})
	}
}
