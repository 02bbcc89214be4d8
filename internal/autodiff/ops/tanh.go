package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// TanhOp records the candidate nonlinearity: output = tanh(input).
//
// Backward: grad_input = grad * (1 - tanh(x)^2), from the saved output.
type TanhOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a tanh operation record.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{input: input, output: output}
}

func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	squared := backend.Mul(op.output.Clone(), op.output)
	deriv := backend.Sub(onesLike(op.output), squared)
	grad := backend.Mul(deriv, outputGrad)
	return []*tensor.RawTensor{grad}
}

func (op *TanhOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *TanhOp) Output() *tensor.RawTensor {
	return op.output
}
