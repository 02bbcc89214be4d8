package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// SigmoidOp records the logistic gate nonlinearity: output = σ(input).
//
// Backward: grad_input = grad * σ(x) * (1 - σ(x)), computed from the
// saved forward output so the exponential is not re-evaluated.
type SigmoidOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a sigmoid operation record.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{input: input, output: output}
}

func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	oneMinus := backend.Sub(onesLike(op.output), op.output)
	deriv := backend.Mul(oneMinus, op.output)
	grad := backend.Mul(deriv, outputGrad)
	return []*tensor.RawTensor{grad}
}

func (op *SigmoidOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

func (op *SigmoidOp) Output() *tensor.RawTensor {
	return op.output
}
