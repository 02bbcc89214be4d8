// Copyright 2026 The OpenNMT Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Recurrent layers: GRUCell, StackedGRU
//   - Layers: Linear, Dropout
//   - Activations: Sigmoid, Tanh
//   - Utilities: Module interface, Parameter
//   - Initialization: XavierUniform
//
// # Basic Usage
//
//	import (
//	    "github.com/klgraham/OpenNMT/nn"
//	    "github.com/klgraham/OpenNMT/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    stack, err := nn.NewStackedGRU[float32](nn.Config{
//	        Layers:     2,
//	        InputSize:  64,
//	        HiddenSize: 128,
//	        Dropout:    0.2,
//	        Residual:   true,
//	        Seed:       42,
//	    }, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    hidden := stack.InitHidden(batch, backend)
//	    hidden, err = stack.Step(hidden, x)
//	}
//
// # Recurrent layers
//
// GRUCell advances one layer by a single timestep. StackedGRU wires
// several cells vertically, with residual skips and inter-layer dropout
// controlled by Config.
//
// Constructors return errors for invalid configuration; Forward and
// Step return errors for tensor-shape mismatches. Train/Eval toggles
// dropout; in eval mode a step is fully deterministic.
package nn
