package ops

import "github.com/klgraham/OpenNMT/internal/tensor"

// AddOp records element-wise addition: output = a + b.
//
// Backward: grad_a = grad, grad_b = grad, each reduced to the original
// input shape when broadcasting was involved.
type AddOp struct {
	a, b   *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAddOp creates an addition operation record.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{a: a, b: b, output: output}
}

func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gradA := reduceBroadcast(outputGrad, op.a.Shape(), backend)
	gradB := reduceBroadcast(outputGrad, op.b.Shape(), backend)
	return []*tensor.RawTensor{gradA, gradB}
}

func (op *AddOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.a, op.b}
}

func (op *AddOp) Output() *tensor.RawTensor {
	return op.output
}
