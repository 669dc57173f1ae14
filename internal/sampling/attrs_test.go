package sampling

import (
	"testing"

	"github.com/born-ml/reparam/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAttrs(t *testing.T) {
	pareto := DefaultAttrs(Pareto{})
	assert.False(t, pareto.IsScalar(), "pareto has no default a")
	assert.Nil(t, pareto.Size)
	assert.Equal(t, "cpu", pareto.Context)

	rayleigh := DefaultAttrs(Rayleigh{})
	require.True(t, rayleigh.IsScalar())
	assert.Equal(t, 1.0, *rayleigh.Param)
}

func TestParseAttrs(t *testing.T) {
	tests := []struct {
		name   string
		dist   Distribution
		dict   map[string]string
		scalar bool
		param  float64
		size   tensor.Shape
		ctx    string
	}{
		{
			name:   "pareto scalar with size",
			dist:   Pareto{},
			dict:   map[string]string{"a": "2.5", "size": "(2, 3)", "ctx": "cpu(0)"},
			scalar: true,
			param:  2.5,
			size:   tensor.Shape{2, 3},
			ctx:    "cpu(0)",
		},
		{
			name: "pareto tensor",
			dist: Pareto{},
			dict: map[string]string{"a": "None", "size": "None"},
			ctx:  "cpu",
		},
		{
			name:   "rayleigh defaults",
			dist:   Rayleigh{},
			dict:   map[string]string{},
			scalar: true,
			param:  1,
			ctx:    "cpu",
		},
		{
			name: "rayleigh explicit None overrides default",
			dist: Rayleigh{},
			dict: map[string]string{"scale": "None", "size": "[4]"},
			size: tensor.Shape{4},
			ctx:  "cpu",
		},
		{
			name:   "empty tuple is a 0-d size",
			dist:   Rayleigh{},
			dict:   map[string]string{"size": "()"},
			scalar: true,
			param:  1,
			size:   tensor.Shape{},
			ctx:    "cpu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := ParseAttrs(tt.dist, tt.dict)
			require.NoError(t, err)

			assert.Equal(t, tt.scalar, attrs.IsScalar())
			if tt.scalar {
				assert.Equal(t, tt.param, *attrs.Param)
			}
			if tt.size == nil {
				assert.Nil(t, attrs.Size)
			} else {
				assert.True(t, tt.size.Equal(attrs.Size), "size %v", attrs.Size)
			}
			assert.Equal(t, tt.ctx, attrs.Context)
		})
	}
}

func TestParseAttrsErrors(t *testing.T) {
	for name, dict := range map[string]map[string]string{
		"bad param":   {"a": "two"},
		"bad size":    {"size": "(2, x)"},
		"negative":    {"size": "(-1)"},
		"bad ctx":     {"ctx": "tpu(0)"},
		"unknown key": {"scale": "1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAttrs(Pareto{}, dict)
			assert.Error(t, err)
		})
	}
}

func TestAttrsDictRoundTrip(t *testing.T) {
	attrs := ScalarAttrs(0.75, tensor.Shape{3, 1})
	dict := attrs.Dict(Rayleigh{})
	assert.Equal(t, map[string]string{"scale": "0.75", "size": "(3, 1)", "ctx": "cpu"}, dict)

	parsed, err := ParseAttrs(Rayleigh{}, dict)
	require.NoError(t, err)
	assert.Equal(t, 0.75, *parsed.Param)
	assert.True(t, parsed.Size.Equal(tensor.Shape{3, 1}))

	dict = Attrs{}.Dict(Pareto{})
	assert.Equal(t, map[string]string{"a": "None", "size": "None", "ctx": "cpu"}, dict)
}
