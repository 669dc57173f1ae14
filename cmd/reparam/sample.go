package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/reparam/internal/backend/cpu"
	"github.com/born-ml/reparam/internal/parallel"
	"github.com/born-ml/reparam/internal/random"
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/serialization"
	"github.com/born-ml/reparam/internal/tensor"
)

type sampleFlags struct {
	dist    string
	param   string
	size    string
	seed    uint64
	dtype   string
	out     string
	verbose bool
}

func parseSampleFlags(args []string, stderr io.Writer) (*sampleFlags, error) {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &sampleFlags{}
	fs.StringVar(&f.dist, "dist", "pareto", "distribution: pareto or rayleigh")
	fs.StringVar(&f.param, "param", "", "parameter: a scalar (2.5) or a comma-separated list broadcast along the last axis")
	fs.StringVar(&f.size, "size", "", "output shape, e.g. 2,3 (default: parameter shape)")
	fs.Uint64Var(&f.seed, "seed", 0, "noise seed (0 = random)")
	fs.StringVar(&f.dtype, "dtype", "float32", "sample dtype: float32 or float64")
	fs.StringVar(&f.out, "out", "", "also write sample, noise and parameter to this .safetensors file")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func distribution(name string) (sampling.Distribution, error) {
	switch strings.ToLower(name) {
	case "pareto":
		return sampling.Pareto{}, nil
	case "rayleigh":
		return sampling.Rayleigh{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown distribution %q", errUsage, name)
	}
}

func parseDType(name string) (tensor.DataType, error) {
	switch name {
	case "float32":
		return tensor.Float32, nil
	case "float64":
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("%w: unsupported dtype %q", errUsage, name)
	}
}

func generator(seed uint64) random.Generator {
	if seed == 0 {
		return random.NewRandomPCG()
	}
	return random.NewPCG(seed)
}

func newBackend() (*cpu.CPUBackend, error) {
	cfg, err := parallel.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return cpu.NewWithConfig(cfg), nil
}

// parseParam returns the scalar parameter, or the parameter tensor for a
// comma-separated list. An empty string selects the distribution default.
func parseParam(dist sampling.Distribution, s string) (*float64, *tensor.RawTensor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if p, ok := dist.DefaultParam(); ok {
			return &p, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: -param is required for %s", errUsage, dist.Name())
	}

	parts := strings.Split(s, ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid %s %q", errUsage, dist.ParamName(), part)
		}
		values[i] = v
	}
	if len(values) == 1 {
		return &values[0], nil, nil
	}

	raw, err := tensor.NewRaw(tensor.Shape{len(values)}, tensor.Float64, tensor.CPU)
	if err != nil {
		return nil, nil, err
	}
	copy(raw.AsFloat64(), values)
	return nil, raw, nil
}

func runSample(args []string, stdout, stderr io.Writer) error {
	f, err := parseSampleFlags(args, stderr)
	if err != nil {
		return err
	}

	dist, err := distribution(f.dist)
	if err != nil {
		return err
	}
	dtype, err := parseDType(f.dtype)
	if err != nil {
		return err
	}
	var size tensor.Shape
	if f.size != "" {
		if size, err = tensor.ParseShape(f.size); err != nil {
			return err
		}
	}
	scalar, param, err := parseParam(dist, f.param)
	if err != nil {
		return err
	}

	backend, err := newBackend()
	if err != nil {
		return err
	}
	cfg := sampling.Config{DType: dtype, Logger: newLogger(stderr, f.verbose)}
	op := sampling.NewOp(dist, backend, generator(f.seed), cfg)

	var outs []*tensor.RawTensor
	if scalar != nil {
		outs, err = op.Forward(sampling.ScalarAttrs(*scalar, size), nil)
	} else {
		outs, err = op.Forward(sampling.TensorAttrs(size), []*tensor.RawTensor{param})
	}
	if err != nil {
		return err
	}
	defer outs[1].Release()

	if f.out != "" {
		if err := exportSample(f.out, dist, f, scalar, param, outs); err != nil {
			return err
		}
	}

	return printTensor(stdout, outs[0])
}

// exportSample writes the sample, its noise buffer and the parameter tensor,
// with the draw settings as metadata.
func exportSample(path string, dist sampling.Distribution, f *sampleFlags, scalar *float64, param *tensor.RawTensor, outs []*tensor.RawTensor) error {
	tensors := map[string]*tensor.RawTensor{
		"sample": outs[0],
		"noise":  outs[1],
	}
	metadata := map[string]string{
		"dist": dist.Name(),
		"seed": strconv.FormatUint(f.seed, 10),
	}
	if scalar != nil {
		metadata[dist.ParamName()] = strconv.FormatFloat(*scalar, 'g', -1, 64)
	} else {
		tensors[dist.ParamName()] = param
	}

	if err := serialization.WriteFile(path, tensors, metadata); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// printTensor writes the shape header and one row per line along the last axis.
func printTensor(w io.Writer, raw *tensor.RawTensor) error {
	values := make([]float64, raw.NumElements())
	switch raw.DType() {
	case tensor.Float32:
		for i, v := range raw.AsFloat32() {
			values[i] = float64(v)
		}
	case tensor.Float64:
		copy(values, raw.AsFloat64())
	default:
		return fmt.Errorf("cannot print dtype %s", raw.DType())
	}

	if _, err := fmt.Fprintf(w, "# shape %s %s\n", raw.Shape(), raw.DType()); err != nil {
		return err
	}

	row := len(values)
	if shape := raw.Shape(); len(shape) > 0 && shape[len(shape)-1] > 0 {
		row = shape[len(shape)-1]
	}
	for start := 0; start < len(values); start += row {
		cells := make([]string, 0, row)
		for _, v := range values[start : start+row] {
			cells = append(cells, strconv.FormatFloat(v, 'g', 8, 64))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	return nil
}
