package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// SubOp records element-wise subtraction: output = a - b.
//
// Backward: grad_a = grad, grad_b = -grad. The candidate interpolation
// nextH = n + i*(prevH - n) routes through this op, so the sign flip on
// the second input matters for the hidden-state gradient.
type SubOp struct {
	a, b   *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSubOp creates a subtraction operation record.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{a: a, b: b, output: output}
}

func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := reduceBroadcast(outputGrad, op.a.Shape(), backend)

	negGrad := backend.Sub(zerosLike(outputGrad), outputGrad)
	gradB := reduceBroadcast(negGrad, op.b.Shape(), backend)

	return []*tensor.RawTensor{gradA, gradB}
}

func (op *SubOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.a, op.b}
}

func (op *SubOp) Output() *tensor.RawTensor {
	return op.output
}
