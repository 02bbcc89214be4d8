package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// MatMulOp records matrix multiplication: output = a @ b.
//
// Backward:
//
//	grad_a = grad @ b^T
//	grad_b = a^T @ grad
type MatMulOp struct {
	a, b   *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMatMulOp creates a matrix multiplication operation record.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{a: a, b: b, output: output}
}

func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := backend.MatMul(outputGrad, backend.Transpose(op.b))
	gradB := backend.MatMul(backend.Transpose(op.a), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}

func (op *MatMulOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.a, op.b}
}

func (op *MatMulOp) Output() *tensor.RawTensor {
	return op.output
}
