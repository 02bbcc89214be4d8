// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training.
//
// # Overview
//
// This package contains:
//   - SGD: plain stochastic gradient descent
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	// ... forward pass, then:
//	grads, err := autodiff.Backward(loss)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opt := optim.NewSGD[float32, *autodiff.Backend[*cpu.Backend]](0.01)
//	if err := opt.Step(model.Parameters(), grads); err != nil {
//	    log.Fatal(err)
//	}
package optim
