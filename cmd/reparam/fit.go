package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/born-ml/reparam/internal/autodiff"
	"github.com/born-ml/reparam/internal/backend/cpu"
	"github.com/born-ml/reparam/internal/optim"
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
)

// Smallest Pareto shape kept after a step; a must stay strictly positive.
const minParetoShape = 1e-3

type fitFlags struct {
	dist      string
	init      float64
	target    float64
	n         int
	steps     int
	lr        float64
	optimizer string
	seed      uint64
	verbose   bool
}

func parseFitFlags(args []string, stderr io.Writer) (*fitFlags, error) {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &fitFlags{}
	fs.StringVar(&f.dist, "dist", "rayleigh", "distribution: pareto or rayleigh")
	fs.Float64Var(&f.init, "init", 1.0, "initial parameter value")
	fs.Float64Var(&f.target, "target", 2.0, "target sample mean")
	fs.IntVar(&f.n, "n", 1024, "samples per step")
	fs.IntVar(&f.steps, "steps", 300, "optimization steps")
	fs.Float64Var(&f.lr, "lr", 0.05, "learning rate")
	fs.StringVar(&f.optimizer, "optim", "adam", "optimizer: adam or sgd")
	fs.Uint64Var(&f.seed, "seed", 0, "noise seed (0 = random)")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.n <= 0 || f.steps <= 0 {
		return nil, fmt.Errorf("%w: -n and -steps must be positive", errUsage)
	}
	return f, nil
}

func newOptimizer(name string, params []*tensor.Tensor[float32, *cpu.CPUBackend], lr float32, backend *cpu.CPUBackend) (optim.Optimizer, error) {
	switch name {
	case "adam":
		return optim.NewAdam(params, optim.AdamConfig{LR: lr}, backend), nil
	case "sgd":
		return optim.NewSGD(params, optim.SGDConfig{LR: lr, Momentum: 0.9}, backend), nil
	default:
		return nil, fmt.Errorf("%w: unknown optimizer %q", errUsage, name)
	}
}

// runFit minimizes (mean(x) - target)² over the distribution parameter, where
// x is drawn fresh every step and differentiated through the sampler.
func runFit(args []string, stdout, stderr io.Writer) error {
	f, err := parseFitFlags(args, stderr)
	if err != nil {
		return err
	}
	dist, err := distribution(f.dist)
	if err != nil {
		return err
	}
	backend, err := newBackend()
	if err != nil {
		return err
	}

	logger := newLogger(stderr, f.verbose)
	cfg := sampling.Config{DType: tensor.Float32, Logger: logger}
	sampler := autodiff.NewSampler(sampling.NewOp(dist, backend, generator(f.seed), cfg))

	param, err := tensor.FromSlice([]float32{float32(f.init)}, tensor.Shape{1}, backend)
	if err != nil {
		return err
	}
	params := []*tensor.Tensor[float32, *cpu.CPUBackend]{param}
	opt, err := newOptimizer(f.optimizer, params, float32(f.lr), backend)
	if err != nil {
		return err
	}

	lo := float32(0)
	if _, ok := dist.(sampling.Pareto); ok {
		lo = minParetoShape
	}

	tape := sampler.Tape()
	size := tensor.Shape{f.n}
	var mean float64
	for step := 1; step <= f.steps; step++ {
		tape.StartRecording()
		x, err := sampler.Sample(sampling.TensorAttrs(size), param.Raw())
		if err != nil {
			tape.Clear()
			return fmt.Errorf("step %d: %w", step, err)
		}

		mean = 0
		for _, v := range x.AsFloat32() {
			mean += float64(v)
		}
		mean /= float64(f.n)

		seed := tensor.Full[float32](size, float32(2*(mean-f.target)/float64(f.n)), backend)
		grads := tape.BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{x: seed.Raw()}, backend)
		tape.Clear()
		x.Release()

		opt.Step(grads)
		optim.ClampMin(params, lo)
		opt.ZeroGrad()

		if step%50 == 0 || step == f.steps {
			logger.Info("fit",
				"step", step,
				dist.ParamName(), param.Data()[0],
				"mean", mean,
				"target", f.target,
			)
		}
	}

	_, err = fmt.Fprintf(stdout, "%s %s=%g mean=%g\n", dist.Name(), dist.ParamName(), param.Data()[0], mean)
	return err
}
