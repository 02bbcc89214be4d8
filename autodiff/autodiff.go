// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// It wraps any backend with a gradient tape that records every
// primitive operation, so a forward pass through unmodified model code
// can be differentiated:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	// ... forward pass using backend ...
//
//	grads, err := autodiff.Backward(loss)
package autodiff

import (
	"github.com/klgraham/OpenNMT/internal/autodiff"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates an autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is satisfied by backends that can replay a tape.
type BackwardCapable = autodiff.BackwardCapable

// Gradients holds the result of a backward pass.
type Gradients = autodiff.Gradients

// Backward runs reverse-mode differentiation from output.
func Backward[T tensor.DType, B tensor.Backend](output *tensor.Tensor[T, B]) (*Gradients, error) {
	return autodiff.Backward(output)
}

// GetFor returns the gradient for a typed tensor on the given backend.
func GetFor[T tensor.DType, B tensor.Backend](g *Gradients, t *tensor.Tensor[T, B], b B) (*tensor.Tensor[T, B], bool) {
	return autodiff.GetFor(g, t, b)
}
