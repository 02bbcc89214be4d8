package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// MulOp records element-wise multiplication: output = a * b.
//
// Backward: grad_a = grad * b, grad_b = grad * a. Gating (r ⊙ H_n,
// i ⊙ (prevH − n)) and dropout masks are all expressed as MulOp, so
// the mask gradient flows for free.
type MulOp struct {
	a, b   *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMulOp creates a multiplication operation record.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{a: a, b: b, output: output}
}

func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := reduceBroadcast(backend.Mul(outputGrad.Clone(), op.b), op.a.Shape(), backend)
	gradB := reduceBroadcast(backend.Mul(outputGrad.Clone(), op.a), op.b.Shape(), backend)
	return []*tensor.RawTensor{gradA, gradB}
}

func (op *MulOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.a, op.b}
}

func (op *MulOp) Output() *tensor.RawTensor {
	return op.output
}
