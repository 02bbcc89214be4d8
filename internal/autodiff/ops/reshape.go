package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// ReshapeOp records a shape change over the same elements.
//
// Backward: reshape the output gradient back to the input shape.
type ReshapeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReshapeOp creates a reshape operation record.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output}
}

func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

func (op *ReshapeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *ReshapeOp) Output() *tensor.RawTensor {
	return op.output
}
