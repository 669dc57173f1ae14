package sampling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/reparam/internal/tensor"
)

const noneValue = "None"

// Attrs are the operator attributes bound at graph construction or eager call time.
type Attrs struct {
	// Param is the scalar distribution parameter. Nil selects the tensor path,
	// where the parameter arrives as the single input tensor.
	Param *float64

	// Size is the requested output shape. Nil means "not given": the output is
	// the parameter tensor's shape, or a single value on the scalar path.
	Size tensor.Shape

	// Context is the device context string, [cpu|gpu|cpu_pinned](n). Empty means cpu.
	Context string
}

// ScalarAttrs returns attributes for the scalar-parameter path.
func ScalarAttrs(param float64, size tensor.Shape) Attrs {
	return Attrs{Param: &param, Size: size, Context: "cpu"}
}

// TensorAttrs returns attributes for the tensor-parameter path.
func TensorAttrs(size tensor.Shape) Attrs {
	return Attrs{Size: size, Context: "cpu"}
}

// DefaultAttrs returns the attribute defaults of dist: Pareto has no default a,
// Rayleigh defaults to scale = 1.0.
func DefaultAttrs(dist Distribution) Attrs {
	attrs := Attrs{Context: "cpu"}
	if p, ok := dist.DefaultParam(); ok {
		attrs.Param = &p
	}
	return attrs
}

// IsScalar reports whether the attributes select the scalar-parameter path.
func (a Attrs) IsScalar() bool {
	return a.Param != nil
}

// ParseAttrs builds Attrs for dist from their string dictionary form, e.g.
//
//	{"a": "2.5", "size": "(2, 3)", "ctx": "cpu"}
//	{"scale": "None", "size": "None"}
//
// Absent keys take the distribution defaults.
func ParseAttrs(dist Distribution, dict map[string]string) (Attrs, error) {
	attrs := DefaultAttrs(dist)

	for key, raw := range dict {
		value := strings.TrimSpace(raw)
		switch key {
		case dist.ParamName():
			if value == noneValue {
				attrs.Param = nil
				continue
			}
			p, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Attrs{}, fmt.Errorf("%s: invalid %s %q: %w", dist.Name(), key, raw, err)
			}
			attrs.Param = &p
		case "size":
			if value == noneValue {
				attrs.Size = nil
				continue
			}
			shape, err := tensor.ParseShape(value)
			if err != nil {
				return Attrs{}, fmt.Errorf("%s: invalid size: %w", dist.Name(), err)
			}
			attrs.Size = shape
		case "ctx":
			if _, err := tensor.ParseContext(value); err != nil {
				return Attrs{}, fmt.Errorf("%s: %w", dist.Name(), err)
			}
			attrs.Context = value
		default:
			return Attrs{}, fmt.Errorf("%s: unknown attribute %q", dist.Name(), key)
		}
	}

	return attrs, nil
}

// Dict returns the string dictionary form of the attributes for dist.
func (a Attrs) Dict(dist Distribution) map[string]string {
	dict := map[string]string{
		dist.ParamName(): noneValue,
		"size":           noneValue,
		"ctx":            a.Context,
	}
	if a.Param != nil {
		dict[dist.ParamName()] = strconv.FormatFloat(*a.Param, 'g', -1, 64)
	}
	if a.Size != nil {
		dict["size"] = a.Size.String()
	}
	if a.Context == "" {
		dict["ctx"] = "cpu"
	}
	return dict
}
