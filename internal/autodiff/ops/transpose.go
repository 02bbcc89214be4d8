package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// TransposeOp records a dimension permutation.
//
// Backward: apply the inverse permutation to the output gradient.
type TransposeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	axes   []int
}

// NewTransposeOp creates a transpose operation record. An empty axes
// slice means the default full reversal.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{input: input, output: output, axes: axes}
}

func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	if len(op.axes) == 0 {
		// Reversal is its own inverse.
		return []*tensor.RawTensor{backend.Transpose(outputGrad)}
	}

	inverse := make([]int, len(op.axes))
	for i, a := range op.axes {
		inverse[a] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

func (op *TransposeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *TransposeOp) Output() *tensor.RawTensor {
	return op.output
}
