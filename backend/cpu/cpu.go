// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the pure Go CPU backend.
package cpu

import (
	internalcpu "github.com/klgraham/OpenNMT/internal/backend/cpu"
	"github.com/klgraham/OpenNMT/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}
