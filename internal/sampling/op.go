package sampling

import (
	"fmt"

	"github.com/born-ml/reparam/internal/random"
	"github.com/born-ml/reparam/internal/tensor"
)

// Backward input layout of the tensor-parameter form.
const (
	inOutputGrad = iota // gradient of the sample output
	inNoiseGrad         // gradient of the noise output (ignored)
	inParam             // parameter tensor
	inOutput            // forward sample output
	inNoise             // noise buffer left behind by forward

	numTensorBackwardInputs
)

// Op is one sampling operator bound to a distribution, a backend and a noise generator.
type Op struct {
	dist    Distribution
	backend tensor.Backend
	gen     random.Generator
	cfg     Config
}

// NewOp creates an operator for dist.
func NewOp(dist Distribution, backend tensor.Backend, gen random.Generator, cfg Config) *Op {
	return &Op{
		dist:    dist,
		backend: backend,
		gen:     gen,
		cfg:     cfg,
	}
}

// NewPareto creates a Pareto sampling operator.
func NewPareto(backend tensor.Backend, gen random.Generator, cfg Config) *Op {
	return NewOp(Pareto{}, backend, gen, cfg)
}

// NewRayleigh creates a Rayleigh sampling operator.
func NewRayleigh(backend tensor.Backend, gen random.Generator, cfg Config) *Op {
	return NewOp(Rayleigh{}, backend, gen, cfg)
}

// Distribution returns the operator's distribution.
func (op *Op) Distribution() Distribution {
	return op.dist
}

// Backend returns the backend kernels are launched on.
func (op *Op) Backend() tensor.Backend {
	return op.backend
}

// Forward draws samples.
//
// inputs is empty when attrs carries a scalar parameter and holds the parameter
// tensor otherwise. The result is [sample, noise]; on the tensor path noise holds
// d(sample)/d(parameter) and must be passed unchanged to Backward.
//
// Invalid parameters abort the call before the sampling launch and no output is returned.
func (op *Op) Forward(attrs Attrs, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	name := op.dist.Name()

	if !op.cfg.DType.IsFloat() {
		return nil, fmt.Errorf("%s: %w: sample dtype %s", name, ErrUnsupportedDType, op.cfg.DType)
	}
	if err := op.checkContext(attrs.Context); err != nil {
		return nil, err
	}

	var param *tensor.RawTensor
	switch {
	case attrs.IsScalar() && len(inputs) != 0:
		return nil, fmt.Errorf("%s: %w: scalar %s takes no inputs, got %d",
			name, ErrInputCount, op.dist.ParamName(), len(inputs))
	case !attrs.IsScalar() && len(inputs) != 1:
		return nil, fmt.Errorf("%s: %w: want 1 parameter tensor, got %d", name, ErrInputCount, len(inputs))
	case !attrs.IsScalar():
		param = inputs[0]
	}

	var (
		geo *tensor.Broadcast
		err error
	)
	if param == nil {
		// Host-side check: one value does not need a parallel pass.
		if !op.dist.Valid(*attrs.Param) {
			return nil, &ParamError{Op: name, Constraint: op.dist.Constraint()}
		}
		geo, err = tensor.ResolveBroadcast(nil, true, attrs.Size)
	} else {
		geo, err = tensor.ResolveBroadcast(param.Shape(), false, attrs.Size)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	count := geo.NumElements()
	noise, err := random.SampleUniform(op.gen, geo.Out, op.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if param != nil {
		flag, err := CheckDomain(op.backend, param, op.dist.Valid)
		if err != nil {
			noise.Release()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		// Launch returned, so the readback happens after every check completed.
		if !flag.Valid() {
			noise.Release()
			return nil, &ParamError{Op: name, Constraint: op.dist.Constraint()}
		}
	}

	out, err := tensor.NewRaw(geo.Out, op.cfg.DType, op.backend.Device())
	if err != nil {
		noise.Release()
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	op.cfg.logger().Debug("sampling forward",
		"dist", name,
		"path", pathName(param == nil),
		"shape", geo.Out.String(),
		"elements", count,
	)

	if count == 0 {
		return []*tensor.RawTensor{out, noise}, nil
	}

	if param == nil {
		sampleScalar(op.backend, op.dist.scalarKernel(), *attrs.Param, noise, out)
	} else {
		sampleTensor(op.backend, geo, op.dist.tensorKernel(), param, noise, out)
	}

	return []*tensor.RawTensor{out, noise}, nil
}

// Backward propagates the output gradient to the parameter tensor.
//
// The tensor-parameter form takes five inputs,
// [outputGrad, noiseGrad, param, output, noise], and returns [paramGrad].
// Any other arity is the scalar form, which has no parameter to receive a
// gradient and returns no outputs. noise is read, never written.
func (op *Op) Backward(_ Attrs, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	name := op.dist.Name()

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s backward: %w: missing output gradient", name, ErrInputCount)
	}
	if len(inputs) != numTensorBackwardInputs {
		return []*tensor.RawTensor{}, nil
	}

	ograd, param, noise := inputs[inOutputGrad], inputs[inParam], inputs[inNoise]
	if !param.DType().IsFloat() {
		return nil, fmt.Errorf("%s backward: %w: parameter dtype %s has no gradient",
			name, ErrUnsupportedDType, param.DType())
	}
	if !ograd.DType().IsFloat() {
		return nil, fmt.Errorf("%s backward: %w: output gradient dtype %s", name, ErrUnsupportedDType, ograd.DType())
	}
	if noise.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%s backward: %w: noise dtype %s", name, ErrUnsupportedDType, noise.DType())
	}
	if noise.NumElements() != ograd.NumElements() {
		return nil, fmt.Errorf("%s backward: noise has %d elements, output gradient %d",
			name, noise.NumElements(), ograd.NumElements())
	}
	if out := inputs[inOutput]; out != nil && !out.Shape().Equal(ograd.Shape()) {
		return nil, fmt.Errorf("%s backward: output shape %v does not match gradient shape %v",
			name, out.Shape(), ograd.Shape())
	}

	geo, err := tensor.ResolveBroadcast(param.Shape(), false, ograd.Shape())
	if err != nil {
		return nil, fmt.Errorf("%s backward: %w", name, err)
	}

	grad, err := tensor.NewRaw(param.Shape(), param.DType(), op.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("%s backward: %w", name, err)
	}

	op.cfg.logger().Debug("sampling backward",
		"dist", name,
		"param_shape", param.Shape().String(),
		"grad_shape", ograd.Shape().String(),
		"elements", geo.NumElements(),
	)

	// Zero-size outputs contribute nothing; grad stays zero.
	if geo.NumElements() > 0 {
		reduceGrad(op.backend, geo, ograd, noise, grad)
	}

	return []*tensor.RawTensor{grad}, nil
}

func (op *Op) checkContext(ctx string) error {
	parsed, err := tensor.ParseContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op.dist.Name(), err)
	}
	if parsed.Device != op.backend.Device() {
		return fmt.Errorf("%s: %w: context %s, backend %s on %s",
			op.dist.Name(), ErrDeviceMismatch, parsed, op.backend.Name(), op.backend.Device())
	}
	return nil
}

func pathName(scalar bool) string {
	if scalar {
		return "scalar"
	}
	return "tensor"
}
