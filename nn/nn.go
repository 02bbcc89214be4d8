// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/nn"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Module is the common interface for all trainable components.
type Module[T tensor.DType, B tensor.Backend] = nn.Module[T, B]

// Parameter represents a named trainable tensor.
type Parameter[T tensor.DType, B tensor.Backend] = nn.Parameter[T, B]

// NewParameter wraps a tensor as a named parameter.
func NewParameter[T tensor.DType, B tensor.Backend](name string, t *tensor.Tensor[T, B]) *Parameter[T, B] {
	return nn.NewParameter(name, t)
}

// Errors

// ConfigError reports an invalid construction parameter.
type ConfigError = nn.ConfigError

// ShapeError reports a runtime tensor-shape mismatch.
type ShapeError = nn.ShapeError

// Layers

// Linear represents a fully connected layer: y = x @ W^T + b.
type Linear[T tensor.DType, B tensor.Backend] = nn.Linear[T, B]

// NewLinear creates a linear layer with Xavier-uniform weights.
func NewLinear[T tensor.DType, B tensor.Backend](inFeatures, outFeatures int, withBias bool, rng *rand.Rand, b B) (*Linear[T, B], error) {
	return nn.NewLinear[T, B](inFeatures, outFeatures, withBias, rng, b)
}

// Dropout zeroes elements with probability p during training.
type Dropout[T tensor.DType, B tensor.Backend] = nn.Dropout[T, B]

// NewDropout creates a dropout module with drop probability p in [0, 1).
func NewDropout[T tensor.DType, B tensor.Backend](p float64, rng *rand.Rand, b B) (*Dropout[T, B], error) {
	return nn.NewDropout[T, B](p, rng, b)
}

// Activations

// Sigmoid is the logistic activation module.
type Sigmoid[T tensor.DType, B tensor.Backend] = nn.Sigmoid[T, B]

// NewSigmoid creates a sigmoid activation module.
func NewSigmoid[T tensor.DType, B tensor.Backend]() *Sigmoid[T, B] {
	return nn.NewSigmoid[T, B]()
}

// Tanh is the hyperbolic tangent activation module.
type Tanh[T tensor.DType, B tensor.Backend] = nn.Tanh[T, B]

// NewTanh creates a tanh activation module.
func NewTanh[T tensor.DType, B tensor.Backend]() *Tanh[T, B] {
	return nn.NewTanh[T, B]()
}

// Recurrent layers

// GRUCell advances one recurrent layer by a single timestep.
type GRUCell[T tensor.DType, B tensor.Backend] = nn.GRUCell[T, B]

// NewGRUCell creates a single-layer gated recurrent cell.
func NewGRUCell[T tensor.DType, B tensor.Backend](inputSize, hiddenSize int, rng *rand.Rand, b B) (*GRUCell[T, B], error) {
	return nn.NewGRUCell[T, B](inputSize, hiddenSize, rng, b)
}

// Config describes a stacked recurrent network.
type Config = nn.Config

// StackedGRU runs several GRUCells as a vertical stack per timestep.
type StackedGRU[T tensor.DType, B tensor.Backend] = nn.StackedGRU[T, B]

// NewStackedGRU builds a stack from a validated Config.
//
// Example:
//
//	backend := cpu.New()
//	stack, err := nn.NewStackedGRU[float32](nn.Config{
//	    Layers:     3,
//	    InputSize:  64,
//	    HiddenSize: 128,
//	    Dropout:    0.2,
//	    Residual:   true,
//	    Seed:       42,
//	}, backend)
func NewStackedGRU[T tensor.DType, B tensor.Backend](cfg Config, b B) (*StackedGRU[T, B], error) {
	return nn.NewStackedGRU[T, B](cfg, b)
}

// Initialization

// XavierUniform creates a tensor initialized from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)).
func XavierUniform[T tensor.DType, B tensor.Backend](shape tensor.Shape, fanIn, fanOut int, rng *rand.Rand, b B) *tensor.Tensor[T, B] {
	return nn.XavierUniform[T, B](shape, fanIn, fanOut, rng, b)
}
