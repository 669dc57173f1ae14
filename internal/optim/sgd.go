package optim

import (
	"github.com/born-ml/reparam/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	}, backend)
type SGD[B tensor.Backend] struct {
	params     []*tensor.Tensor[float32, B]
	lr         float32
	momentum   float32
	velocities map[*tensor.Tensor[float32, B]][]float32
	backend    B
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD[B tensor.Backend](params []*tensor.Tensor[float32, B], config SGDConfig, backend B) *SGD[B] {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*tensor.Tensor[float32, B]][]float32),
		backend:    backend,
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not sampled from) are skipped.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		if s.momentum == 0 {
			s.updateParameter(param.Data(), grad.Data())
		} else {
			s.updateParameterWithMomentum(param, grad.Data())
		}
	}
}

// updateParameter performs simple SGD update without momentum.
func (s *SGD[B]) updateParameter(param, grad []float32) {
	lr := s.lr
	s.backend.Launch(len(param), func(i int) {
		param[i] -= lr * grad[i]
	})
}

// updateParameterWithMomentum performs SGD update with momentum.
func (s *SGD[B]) updateParameterWithMomentum(param *tensor.Tensor[float32, B], grad []float32) {
	velocity, exists := s.velocities[param]
	if !exists {
		velocity = make([]float32, param.NumElements())
		s.velocities[param] = velocity
	}

	data := param.Data()
	lr, momentum := s.lr, s.momentum
	s.backend.Launch(len(data), func(i int) {
		velocity[i] = momentum*velocity[i] + grad[i]
		data[i] -= lr * velocity[i]
	})
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	zeroGrads(s.params)
}

// Params returns the optimized parameters.
func (s *SGD[B]) Params() []*tensor.Tensor[float32, B] {
	return s.params
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}
