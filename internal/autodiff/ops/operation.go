// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores its forward inputs/outputs and knows how to turn
// an output gradient into input gradients. The op set is the closed
// vocabulary the recurrent gate graph is built from:
//   - AddOp / SubOp / MulOp: elementwise gate algebra
//   - MatMulOp / TransposeOp / ReshapeOp: the affine projections
//   - ChunkOp / CatOp: fused triple-gate splitting and its inverse
//   - SigmoidOp / TanhOp: gate nonlinearities
package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// MultiOutputOperation represents an operation that produces multiple
// outputs (Chunk). The tape handles these specially by collecting
// gradients for ALL outputs before calling BackwardMulti.
type MultiOutputOperation interface {
	Operation

	// Outputs returns all output tensors produced by this operation.
	Outputs() []*tensor.RawTensor

	// BackwardMulti computes input gradients given gradients for ALL outputs.
	BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
}
