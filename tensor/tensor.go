// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations.
//
// The package defines core interfaces and types for type-safe tensor
// operations:
//   - Tensor[T, B]: high-level generic tensor with type safety
//   - RawTensor: low-level representation backends operate on
//   - Backend: interface for device-specific compute implementations
//   - Shape, DataType, Device: core type definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import (
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// DType is a constraint for tensor element types.
// Supported types: float32, float64.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} represents a 2×3 matrix.
type Shape = tensor.Shape

// Backend is the interface compute backends implement.
type Backend = tensor.Backend

// Tensor is a generic tensor with element type T and backend B.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// RawTensor is the low-level tensor representation.
type RawTensor = tensor.RawTensor

// New creates a Tensor from a RawTensor and backend.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw creates a zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor with values drawn from N(0, 1) using the
// supplied source.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, rng, b)
}

// BroadcastShapes implements NumPy-style broadcasting rules.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
