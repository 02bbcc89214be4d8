// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/klgraham/OpenNMT/internal/optim"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Optimizer updates parameters from the gradients of a backward pass.
type Optimizer[T tensor.DType, B tensor.Backend] = optim.Optimizer[T, B]

// SGD implements plain stochastic gradient descent.
type SGD[T tensor.DType, B tensor.Backend] = optim.SGD[T, B]

// NewSGD creates an SGD optimizer with the given learning rate.
//
// Example:
//
//	opt := optim.NewSGD[float32, *cpu.Backend](0.01)
//	err := opt.Step(model.Parameters(), grads)
func NewSGD[T tensor.DType, B tensor.Backend](lr T) *SGD[T, B] {
	return optim.NewSGD[T, B](lr)
}
