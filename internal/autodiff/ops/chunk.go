package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// ChunkOp records splitting one tensor into n equal parts along a
// dimension. This is the multi-output op behind the fused triple-gate
// projection: [B, 3H] -> 3 x [B, H].
//
// Backward: concatenate the per-chunk gradients along the split
// dimension. Chunks never used downstream contribute zeros.
type ChunkOp struct {
	input   *tensor.RawTensor
	outputs []*tensor.RawTensor
	dim     int
}

// NewChunkOp creates a chunk operation record. dim must already be
// normalized to a non-negative index.
func NewChunkOp(input *tensor.RawTensor, outputs []*tensor.RawTensor, dim int) *ChunkOp {
	return &ChunkOp{input: input, outputs: outputs, dim: dim}
}

// Backward is only valid for single-output operations; the tape routes
// ChunkOp through BackwardMulti instead.
func (op *ChunkOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	panic("chunk: use BackwardMulti for multi-output operations")
}

func (op *ChunkOp) BackwardMulti(outputGrads []*tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	parts := make([]*tensor.RawTensor, len(op.outputs))
	for i, grad := range outputGrads {
		if grad == nil {
			parts[i] = zerosLike(op.outputs[i])
		} else {
			parts[i] = grad
		}
	}
	return []*tensor.RawTensor{backend.Cat(parts, op.dim)}
}

func (op *ChunkOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the first chunk; the tape keys multi-output ops by
// Outputs, not Output.
func (op *ChunkOp) Output() *tensor.RawTensor {
	return op.outputs[0]
}

func (op *ChunkOp) Outputs() []*tensor.RawTensor {
	return op.outputs
}
