package optim

import (
	"math"

	"github.com/born-ml/reparam/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Reparameterized gradients are noisy single-sample estimates, which is the
// setting Adam's per-element step normalization handles well.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[B tensor.Backend] struct {
	params  []*tensor.Tensor[float32, B]
	lr      float32
	beta1   float32
	beta2   float32
	eps     float32
	t       int                                      // Timestep for bias correction
	m       map[*tensor.Tensor[float32, B]][]float32 // First moment estimates
	v       map[*tensor.Tensor[float32, B]][]float32 // Second moment estimates
	backend B
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam[B tensor.Backend](params []*tensor.Tensor[float32, B], config AdamConfig, backend B) *Adam[B] {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[B]{
		params:  params,
		lr:      config.LR,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
		m:       make(map[*tensor.Tensor[float32, B]][]float32),
		v:       make(map[*tensor.Tensor[float32, B]][]float32),
		backend: backend,
	}
}

// Step performs a single optimization step using Adam algorithm.
//
// Parameters with no gradient are skipped.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++

	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		m, ok := a.m[param]
		if !ok {
			m = make([]float32, param.NumElements())
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float32, param.NumElements())
			a.v[param] = v
		}

		a.updateParameter(param.Data(), grad.Data(), m, v, biasCorrection1, biasCorrection2)
	}
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam[B]) updateParameter(param, grad, m, v []float32, biasCorrection1, biasCorrection2 float32) {
	lr, beta1, beta2, eps := a.lr, a.beta1, a.beta2, a.eps

	a.backend.Launch(len(param), func(i int) {
		g := grad[i]
		m[i] = beta1*m[i] + (1.0-beta1)*g
		v[i] = beta2*v[i] + (1.0-beta2)*g*g

		mHat := m[i] / biasCorrection1
		vHat := v[i] / biasCorrection2

		param[i] -= lr * mHat / (float32(math.Sqrt(float64(vHat))) + eps)
	})
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	zeroGrads(a.params)
}

// Params returns the optimized parameters.
func (a *Adam[B]) Params() []*tensor.Tensor[float32, B] {
	return a.params
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam[B]) GetTimestep() int {
	return a.t
}
