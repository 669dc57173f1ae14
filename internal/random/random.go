// Package random provides the uniform noise generators that feed the
// reparameterized samplers. A generator is an explicit handle passed to every
// sampling call; there is no package-level random state.
package random

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/born-ml/reparam/internal/tensor"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrNoiseLength is returned when an injected noise buffer does not match the requested count.
	ErrNoiseLength = errors.New("noise length mismatch")

	// ErrNoiseRange is returned when injected noise is outside the open interval (0, 1).
	ErrNoiseRange = errors.New("noise outside (0, 1)")
)

// Generator fills buffers with independent standard-uniform samples in (0, 1).
// Implementations serialize access to their own state.
type Generator interface {
	FillUniform(dst []float32) error
}

// PCG draws uniform noise from a seeded PCG stream.
type PCG struct {
	mu   sync.Mutex
	dist distuv.Uniform
}

// NewPCG creates a generator seeded with seed. Equal seeds give equal streams.
func NewPCG(seed uint64) *PCG {
	return &PCG{
		dist: distuv.Uniform{
			Min: 0,
			Max: 1,
			Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		},
	}
}

// NewRandomPCG creates a generator with a random seed.
func NewRandomPCG() *PCG {
	return NewPCG(rand.Uint64()) //nolint:gosec // statistical sampling, not crypto
}

// FillUniform writes len(dst) samples. Draws that round to 0 or 1 in float32
// are redrawn so every sample lies strictly inside (0, 1).
func (g *PCG) FillUniform(dst []float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range dst {
		v := float32(g.dist.Rand())
		for v <= 0 || v >= 1 {
			v = float32(g.dist.Rand())
		}
		dst[i] = v
	}
	return nil
}

// Fixed replays an injected noise buffer. It makes forward calls deterministic.
type Fixed struct {
	values []float32
}

// NewFixed creates a generator that always yields a copy of values.
func NewFixed(values []float32) (*Fixed, error) {
	for i, v := range values {
		if !(v > 0 && v < 1) {
			return nil, fmt.Errorf("%w: values[%d] = %v", ErrNoiseRange, i, v)
		}
	}
	return &Fixed{values: append([]float32(nil), values...)}, nil
}

// FillUniform copies the injected values into dst.
func (f *Fixed) FillUniform(dst []float32) error {
	if len(dst) != len(f.values) {
		return fmt.Errorf("%w: want %d samples, have %d", ErrNoiseLength, len(dst), len(f.values))
	}
	copy(dst, f.values)
	return nil
}

// SampleUniform allocates a float32 noise buffer of the given shape and fills it from gen.
// A zero-size shape returns an empty buffer without drawing from gen.
func SampleUniform(gen Generator, shape tensor.Shape, device tensor.Device) (*tensor.RawTensor, error) {
	noise, err := tensor.NewRaw(shape, tensor.Float32, device)
	if err != nil {
		return nil, fmt.Errorf("noise buffer: %w", err)
	}
	if noise.NumElements() == 0 {
		return noise, nil
	}
	if err := gen.FillUniform(noise.AsFloat32()); err != nil {
		noise.Release()
		return nil, fmt.Errorf("noise buffer: %w", err)
	}
	return noise, nil
}
