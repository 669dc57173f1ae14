package sampling

import (
	"fmt"
	"sync"

	"github.com/born-ml/reparam/internal/tensor"
	"gonum.org/v1/gonum/floats"
)

// sampleScalar launches f over every output element with one shared parameter.
func sampleScalar(b tensor.Backend, f sampleFunc, p float64, noise, out *tensor.RawTensor) {
	switch out.DType() {
	case tensor.Float32:
		scalarKernel(b, f, p, noise.AsFloat32(), out.AsFloat32())
	case tensor.Float64:
		scalarKernel(b, f, p, noise.AsFloat32(), out.AsFloat64())
	default:
		panic(fmt.Sprintf("sample: unsupported output dtype %s", out.DType()))
	}
}

func scalarKernel[O tensor.Float](b tensor.Backend, f sampleFunc, p float64, noise []float32, out []O) {
	b.Launch(len(out), func(i int) {
		v, saved := f(noise[i], p)
		out[i] = O(v)
		noise[i] = saved
	})
}

// sampleTensor launches f over every output element, reading the parameter
// through the broadcast geometry.
func sampleTensor(b tensor.Backend, geo *tensor.Broadcast, f sampleFunc, param, noise, out *tensor.RawTensor) {
	switch param.DType() {
	case tensor.Float32:
		sampleTensorOut(b, geo, f, param.AsFloat32(), noise, out)
	case tensor.Float64:
		sampleTensorOut(b, geo, f, param.AsFloat64(), noise, out)
	case tensor.Int32:
		sampleTensorOut(b, geo, f, param.AsInt32(), noise, out)
	case tensor.Int64:
		sampleTensorOut(b, geo, f, param.AsInt64(), noise, out)
	default:
		panic(fmt.Sprintf("sample: unsupported parameter dtype %s", param.DType()))
	}
}

func sampleTensorOut[I tensor.DType](b tensor.Backend, geo *tensor.Broadcast, f sampleFunc, params []I, noise, out *tensor.RawTensor) {
	switch out.DType() {
	case tensor.Float32:
		tensorKernel(b, geo, f, params, noise.AsFloat32(), out.AsFloat32())
	case tensor.Float64:
		tensorKernel(b, geo, f, params, noise.AsFloat32(), out.AsFloat64())
	default:
		panic(fmt.Sprintf("sample: unsupported output dtype %s", out.DType()))
	}
}

func tensorKernel[I tensor.DType, O tensor.Float](
	b tensor.Backend,
	geo *tensor.Broadcast,
	f sampleFunc,
	params []I,
	noise []float32,
	out []O,
) {
	b.Launch(len(out), func(i int) {
		v, saved := f(noise[i], float64(params[geo.SourceIndex(i)]))
		out[i] = O(v)
		noise[i] = saved
	})
}

// reduceGrad computes grad[j] = sum of ograd[i] * noise[i] over all output
// indices i that read parameter element j.
func reduceGrad(b tensor.Backend, geo *tensor.Broadcast, ograd, noise, grad *tensor.RawTensor) {
	switch grad.DType() {
	case tensor.Float32:
		reduceGradOut(b, geo, ograd, noise.AsFloat32(), grad.AsFloat32())
	case tensor.Float64:
		reduceGradOut(b, geo, ograd, noise.AsFloat32(), grad.AsFloat64())
	default:
		panic(fmt.Sprintf("backward: unsupported gradient dtype %s", grad.DType()))
	}
}

func reduceGradOut[G tensor.Float](b tensor.Backend, geo *tensor.Broadcast, ograd *tensor.RawTensor, noise []float32, grad []G) {
	switch ograd.DType() {
	case tensor.Float32:
		reduceKernel(b, geo, ograd.AsFloat32(), noise, grad)
	case tensor.Float64:
		reduceKernel(b, geo, ograd.AsFloat64(), noise, grad)
	default:
		panic(fmt.Sprintf("backward: unsupported output gradient dtype %s", ograd.DType()))
	}
}

// reduceKernel accumulates per-chunk partial sums and merges them in chunk order,
// so the result does not depend on how chunks were scheduled.
//
// When the parameter has one element per output nothing is summed; each
// gradient element is written once by the output that reads it.
func reduceKernel[O, G tensor.Float](b tensor.Backend, geo *tensor.Broadcast, ograd []O, noise []float32, grad []G) {
	if len(grad) == len(ograd) {
		b.Launch(len(ograd), func(i int) {
			grad[geo.SourceIndex(i)] = G(float64(ograd[i]) * float64(noise[i]))
		})
		return
	}

	var mu sync.Mutex
	partials := make(map[int][]float64)

	chunks := b.LaunchChunks(len(ograd), func(chunk, start, end int) {
		acc := make([]float64, len(grad))
		for i := start; i < end; i++ {
			acc[geo.SourceIndex(i)] += float64(ograd[i]) * float64(noise[i])
		}
		mu.Lock()
		partials[chunk] = acc
		mu.Unlock()
	})

	total := make([]float64, len(grad))
	for c := 0; c < chunks; c++ {
		floats.Add(total, partials[c])
	}
	for j, v := range total {
		grad[j] = G(v)
	}
}
