// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim fits distribution parameters with the gradients produced by
// reparameterized sampling.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - ClampMin: projection back into a parameter domain after a step
//
// # Fitting Loop Pattern
//
//	backend := cpu.New()
//	sampler := autodiff.NewSampler(random.NewRayleighOp(backend, random.NewPCG(1)))
//	scale, _ := tensor.FromSlice([]float32{0.5}, tensor.Shape{1}, backend)
//	opt := optim.NewAdam([]*tensor.Tensor[float32, *cpu.Backend]{scale},
//	    optim.AdamConfig{LR: 0.05, Betas: [2]float32{0.9, 0.999}, Epsilon: 1e-8}, backend)
//
//	for range steps {
//	    sampler.Tape().StartRecording()
//	    raw, _ := sampler.Sample(random.TensorAttrs(tensor.Shape{n}), scale.Raw())
//	    seed := lossGradient(raw) // d(loss)/d(sample)
//	    grads := sampler.Tape().BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{raw: seed}, backend)
//	    sampler.Tape().Clear()
//
//	    opt.Step(grads)
//	    optim.ClampMin(opt.Params(), 0)
//	    opt.ZeroGrad()
//	}
package optim
