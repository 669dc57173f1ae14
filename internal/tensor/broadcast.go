package tensor

import (
	"errors"
	"fmt"
)

// MaxBroadcastRank is the highest rank the broadcast kernels support.
const MaxBroadcastRank = 6

var (
	// ErrUnsupportedRank is returned when a parameter or output rank exceeds MaxBroadcastRank.
	ErrUnsupportedRank = errors.New("unsupported broadcast rank")

	// ErrIncompatibleShape is returned when a parameter cannot be broadcast to the output shape.
	ErrIncompatibleShape = errors.New("shapes not compatible for broadcasting")
)

// Broadcast is the read-only geometry of one broadcast kernel launch:
// the output shape and, per output axis, the stride into the parameter buffer.
//
// Stride is 0 on axes where the parameter was padded or has size 1, so every
// output coordinate along such an axis reads the same parameter element.
type Broadcast struct {
	Out    Shape
	Stride []int
	Rank   int

	outStrides []int
}

// ResolveBroadcast computes the output shape and parameter strides for a sampling call.
//
// For a scalar parameter the output is override when given, else the 0-d shape.
// For a tensor parameter the output is override when given, else paramShape;
// paramShape must broadcast to exactly the output shape.
//
// Examples:
//
//	ResolveBroadcast(Shape{1, 3}, false, Shape{4, 3}) → Out (4, 3), Stride [0 1]
//	ResolveBroadcast(Shape{3}, false, Shape{2, 2, 3}) → Out (2, 2, 3), Stride [0 0 1]
//	ResolveBroadcast(nil, true, nil)                  → Out (), Stride []
func ResolveBroadcast(paramShape Shape, scalar bool, override Shape) (*Broadcast, error) {
	if override != nil {
		if err := override.Validate(); err != nil {
			return nil, err
		}
		if len(override) > MaxBroadcastRank {
			return nil, fmt.Errorf("%w: output rank %d exceeds %d", ErrUnsupportedRank, len(override), MaxBroadcastRank)
		}
	}

	if scalar {
		out := Shape{}
		if override != nil {
			out = override.Clone()
		}
		return newBroadcast(out, make([]int, len(out))), nil
	}

	if err := paramShape.Validate(); err != nil {
		return nil, err
	}
	if len(paramShape) > MaxBroadcastRank {
		return nil, fmt.Errorf("%w: parameter rank %d exceeds %d", ErrUnsupportedRank, len(paramShape), MaxBroadcastRank)
	}

	out := paramShape.Clone()
	if override != nil {
		merged, _, err := BroadcastShapes(paramShape, override)
		if err != nil {
			return nil, err
		}
		if !merged.Equal(override) {
			return nil, fmt.Errorf("%w: parameter %v cannot be broadcast to output %v",
				ErrIncompatibleShape, paramShape, override)
		}
		out = override.Clone()
	}

	return newBroadcast(out, broadcastStrides(paramShape, out)), nil
}

func newBroadcast(out Shape, stride []int) *Broadcast {
	return &Broadcast{
		Out:        out,
		Stride:     stride,
		Rank:       len(out),
		outStrides: out.ComputeStrides(),
	}
}

// broadcastStrides computes strides for broadcasting inShape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func broadcastStrides(inShape, outShape Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	// Pad input shape with 1s on the left
	inDim := len(inShape)
	offset := outDim - inDim

	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			// Padded dimension, stride is 0
			strides[i] = 0
		case inShape[inIdx] == 1:
			// Broadcast dimension, stride is 0
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// NumElements returns the number of output elements.
func (b *Broadcast) NumElements() int {
	return b.Out.NumElements()
}

// Unravel returns the coordinate of flat output index i.
func (b *Broadcast) Unravel(i int) []int {
	coord := make([]int, b.Rank)
	for d := 0; d < b.Rank; d++ {
		coord[d] = i / b.outStrides[d]
		i %= b.outStrides[d]
	}
	return coord
}

// SourceIndex maps flat output index i to the flat parameter index it reads.
// It is the dot product of Unravel(i) with Stride, without allocating.
func (b *Broadcast) SourceIndex(i int) int {
	idx := 0
	for d := 0; d < b.Rank; d++ {
		coord := i / b.outStrides[d]
		i %= b.outStrides[d]
		idx += coord * b.Stride[d]
	}
	return idx
}
