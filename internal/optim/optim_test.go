package optim_test

import (
	"math"
	"testing"

	"github.com/born-ml/reparam/internal/autodiff"
	"github.com/born-ml/reparam/internal/backend/cpu"
	"github.com/born-ml/reparam/internal/optim"
	"github.com/born-ml/reparam/internal/random"
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func param(t *testing.T, backend *cpu.CPUBackend, values ...float32) *tensor.Tensor[float32, *cpu.CPUBackend] {
	t.Helper()
	p, err := tensor.FromSlice(values, tensor.Shape{len(values)}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return p
}

func gradMap(t *testing.T, p *tensor.Tensor[float32, *cpu.CPUBackend], values ...float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	g := param(t, p.Backend(), values...)
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Raw(): g.Raw()}
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, 2.0)

	optimizer := optim.NewSGD([]*tensor.Tensor[float32, *cpu.CPUBackend]{x},
		optim.SGDConfig{LR: 0.1},
		backend,
	)
	optimizer.Step(gradMap(t, x, 1.0))

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	if actual := x.Data()[0]; !floatEqual(actual, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want 1.9", actual)
	}
	if x.Grad() == nil {
		t.Error("Step should attach the gradient to the parameter")
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, 1.0)

	optimizer := optim.NewSGD([]*tensor.Tensor[float32, *cpu.CPUBackend]{x},
		optim.SGDConfig{LR: 0.1, Momentum: 0.9},
		backend,
	)

	// v_1 = 1.0, x_1 = 1.0 - 0.1 * 1.0 = 0.9
	optimizer.Step(gradMap(t, x, 1.0))
	if actual := x.Data()[0]; !floatEqual(actual, 0.9, 1e-6) {
		t.Errorf("SGD momentum step 1: got %f, want 0.9", actual)
	}

	// v_2 = 0.9 * 1.0 + 1.0 = 1.9, x_2 = 0.9 - 0.1 * 1.9 = 0.71
	optimizer.Step(gradMap(t, x, 1.0))
	if actual := x.Data()[0]; !floatEqual(actual, 0.71, 1e-5) {
		t.Errorf("SGD momentum step 2: got %f, want 0.71", actual)
	}
}

// TestSGD_SkipsMissingGradients checks that parameters outside the gradient map are untouched.
func TestSGD_SkipsMissingGradients(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, 1.0)
	y := param(t, backend, 3.0)

	optimizer := optim.NewSGD([]*tensor.Tensor[float32, *cpu.CPUBackend]{x, y}, optim.SGDConfig{LR: 1}, backend)
	optimizer.Step(gradMap(t, x, 0.5))

	if !floatEqual(x.Data()[0], 0.5, 1e-6) {
		t.Errorf("x = %f, want 0.5", x.Data()[0])
	}
	if y.Data()[0] != 3.0 || y.Grad() != nil {
		t.Errorf("y should be untouched, got %f", y.Data()[0])
	}
}

// TestSGD_ZeroGrad tests ZeroGrad method.
func TestSGD_ZeroGrad(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, 1.0)
	x.SetGrad(param(t, backend, 5.0))

	optimizer := optim.NewSGD([]*tensor.Tensor[float32, *cpu.CPUBackend]{x}, optim.SGDConfig{LR: 0.1}, backend)
	optimizer.ZeroGrad()

	if x.Grad() != nil {
		t.Error("Grad should be nil after ZeroGrad")
	}
}

// TestSGD_GetSetLR tests learning rate accessors and defaults.
func TestSGD_GetSetLR(t *testing.T) {
	backend := cpu.New()
	optimizer := optim.NewSGD([]*tensor.Tensor[float32, *cpu.CPUBackend]{}, optim.SGDConfig{}, backend)

	if optimizer.GetLR() != 0.01 {
		t.Errorf("default LR = %f, want 0.01", optimizer.GetLR())
	}
	optimizer.SetLR(0.5)
	if optimizer.GetLR() != 0.5 {
		t.Errorf("LR after SetLR = %f, want 0.5", optimizer.GetLR())
	}

	var _ optim.Optimizer = optimizer
}

// TestAdam_SimpleUpdate tests the first Adam step, which moves by lr.
func TestAdam_SimpleUpdate(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, 1.0, -1.0)

	optimizer := optim.NewAdam([]*tensor.Tensor[float32, *cpu.CPUBackend]{x}, optim.AdamConfig{LR: 0.1}, backend)
	optimizer.Step(gradMap(t, x, 2.0, -0.5))

	// After bias correction m_hat = g and v_hat = g², so the step is lr * sign(g).
	if !floatEqual(x.Data()[0], 0.9, 1e-5) {
		t.Errorf("x[0] = %f, want 0.9", x.Data()[0])
	}
	if !floatEqual(x.Data()[1], -0.9, 1e-5) {
		t.Errorf("x[1] = %f, want -0.9", x.Data()[1])
	}
	if optimizer.GetTimestep() != 1 {
		t.Errorf("timestep = %d, want 1", optimizer.GetTimestep())
	}
}

// TestAdam_ZeroGrad tests ZeroGrad method.
func TestAdam_ZeroGrad(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, 1.0)

	optimizer := optim.NewAdam([]*tensor.Tensor[float32, *cpu.CPUBackend]{x}, optim.AdamConfig{}, backend)
	optimizer.Step(gradMap(t, x, 1.0))
	if x.Grad() == nil {
		t.Fatal("Step should attach the gradient")
	}

	optimizer.ZeroGrad()
	if x.Grad() != nil {
		t.Error("Grad should be nil after ZeroGrad")
	}
	if optimizer.GetLR() != 0.001 {
		t.Errorf("default LR = %f, want 0.001", optimizer.GetLR())
	}
}

// TestClampMin tests projection back into the parameter domain.
func TestClampMin(t *testing.T) {
	backend := cpu.New()
	x := param(t, backend, -1, 0, 0.5, 2)

	optim.ClampMin([]*tensor.Tensor[float32, *cpu.CPUBackend]{x}, 0.01)

	want := []float32{0.01, 0.01, 0.5, 2}
	for i, v := range x.Data() {
		if v != want[i] {
			t.Errorf("x[%d] = %f, want %f", i, v, want[i])
		}
	}
}

// TestConvergence_RayleighMean fits a Rayleigh scale so that the sample mean
// matches a target, using reparameterized gradients.
func TestConvergence_RayleighMean(t *testing.T) {
	backend := cpu.New()
	const (
		target = 3.0
		n      = 512
		steps  = 400
	)

	scale := param(t, backend, 0.5)
	sampler := autodiff.NewSampler(sampling.NewRayleigh(backend, random.NewPCG(21), sampling.DefaultConfig()))
	optimizer := optim.NewAdam([]*tensor.Tensor[float32, *cpu.CPUBackend]{scale}, optim.AdamConfig{LR: 0.05}, backend)

	for step := 0; step < steps; step++ {
		sampler.Tape().StartRecording()
		x, err := sampler.Sample(sampling.TensorAttrs(tensor.Shape{n}), scale.Raw())
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}

		// loss = (mean(x) - target)², dloss/dx_i = 2 (mean - target) / n
		var sum float64
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		seed := tensor.Full[float32](tensor.Shape{n}, float32(2*(sum/n-target)/n), backend)

		grads := sampler.Tape().BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{x: seed.Raw()}, backend)
		sampler.Tape().Clear()

		optimizer.Step(grads)
		optim.ClampMin(optimizer.Params(), 0)
		optimizer.ZeroGrad()
	}

	// E[x] = scale * sqrt(pi / 2)
	want := target / math.Sqrt(math.Pi/2)
	if got := float64(scale.Data()[0]); math.Abs(got-want)/want > 0.1 {
		t.Errorf("fitted scale = %f, want %f ± 10%%", got, want)
	}
}
