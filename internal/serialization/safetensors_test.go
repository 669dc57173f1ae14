package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/reparam/internal/backend/cpu"
	"github.com/born-ml/reparam/internal/random"
	"github.com/born-ml/reparam/internal/sampling"
	"github.com/born-ml/reparam/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripSamplingOutputs(t *testing.T) {
	backend := cpu.New()
	op := sampling.NewPareto(backend, random.NewPCG(5), sampling.DefaultConfig())

	a, err := tensor.NewRaw(tensor.Shape{1, 3}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(a.AsFloat64(), []float64{0.5, 1, 2})

	outs, err := op.Forward(sampling.TensorAttrs(tensor.Shape{2, 3}), []*tensor.RawTensor{a})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pareto.safetensors")
	metadata := map[string]string{"dist": "pareto", "seed": "5"}
	require.NoError(t, WriteFile(path, map[string]*tensor.RawTensor{
		"a":      a,
		"sample": outs[0],
		"noise":  outs[1],
	}, metadata))

	tensors, meta, err := ReadFile(path, tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, metadata, meta)
	require.Len(t, tensors, 3)

	assert.True(t, tensors["sample"].Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, outs[0].AsFloat32(), tensors["sample"].AsFloat32())
	assert.Equal(t, outs[1].AsFloat32(), tensors["noise"].AsFloat32())
	assert.Equal(t, a.AsFloat64(), tensors["a"].AsFloat64())
}

func TestAlphabeticalLayout(t *testing.T) {
	b, err := tensor.NewRaw(tensor.Shape{1}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	b.AsInt32()[0] = 7
	a, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)
	copy(a.AsInt64(), []int64{1, 2})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]*tensor.RawTensor{"b": b, "a": a}, nil))

	raw := buf.Bytes()
	headerSize := binary.LittleEndian.Uint64(raw[:8])
	data := raw[8+headerSize:]
	require.Len(t, data, 16+4)
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(data[:8]), "a comes first")
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[16:]))

	tensors, meta, err := Read(bytes.NewReader(raw), tensor.CPU)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, []int64{1, 2}, tensors["a"].AsInt64())
}

func TestEmptyTensor(t *testing.T) {
	empty, err := tensor.NewRaw(tensor.Shape{0, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]*tensor.RawTensor{"sample": empty}, nil))

	tensors, _, err := Read(&buf, tensor.CPU)
	require.NoError(t, err)
	assert.True(t, tensors["sample"].Shape().Equal(tensor.Shape{0, 3}))
	assert.Zero(t, tensors["sample"].NumElements())
}

func TestReadRejectsCorruptInput(t *testing.T) {
	tests := map[string][]byte{
		"short":        {1, 2, 3},
		"zero header":  make([]byte, 8),
		"bad json":     append(binary.LittleEndian.AppendUint64(nil, 3), []byte("{x}")...),
		"missing data": append(binary.LittleEndian.AppendUint64(nil, 58), []byte(`{"x":{"dtype":"F32","shape":[2],"data_offsets":[0,8]}}    `)...),
		"bad dtype":    append(binary.LittleEndian.AppendUint64(nil, 52), []byte(`{"x":{"dtype":"Q4","shape":[],"data_offsets":[0,0]}}`)...),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Read(bytes.NewReader(input), tensor.CPU)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "got %v", err)
		})
	}
}

func headerOnly(header string) []byte {
	return append(binary.LittleEndian.AppendUint64(nil, uint64(len(header))), header...)
}

func TestReadRejectsUntrustedOffsets(t *testing.T) {
	tests := map[string]string{
		"oversized end":     `{"x":{"dtype":"F32","shape":[1],"data_offsets":[0,4611686018427387904]}}`,
		"negative start":    `{"x":{"dtype":"F32","shape":[1],"data_offsets":[-4,0]}}`,
		"end before start":  `{"x":{"dtype":"F32","shape":[0],"data_offsets":[8,4]}}`,
		"size mismatch":     `{"x":{"dtype":"F64","shape":[2],"data_offsets":[0,8]}}`,
		"negative dim":      `{"x":{"dtype":"F32","shape":[-1],"data_offsets":[0,0]}}`,
		"overflowing shape": `{"x":{"dtype":"F64","shape":[4294967296,4294967296],"data_offsets":[0,0]}}`,
		"huge shape":        `{"x":{"dtype":"F32","shape":[1073741824],"data_offsets":[0,4294967296]}}`,
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			input := append(headerOnly(header), make([]byte, 16)...)
			_, _, err := Read(bytes.NewReader(input), tensor.CPU)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestWriteRejectsReleasedTensor(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	raw.Release()

	err = Write(&bytes.Buffer{}, map[string]*tensor.RawTensor{"x": raw}, nil)
	require.Error(t, err)
}
