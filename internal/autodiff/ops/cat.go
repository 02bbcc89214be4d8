package ops

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// CatOp records concatenation of several tensors along one dimension.
//
// Backward: slice the output gradient back into per-input pieces. The
// inputs may have different sizes along the concatenation dimension, so
// this cannot reuse Chunk.
type CatOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewCatOp creates a concatenation operation record. dim must already
// be normalized to a non-negative index.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{inputs: inputs, output: output, dim: dim}
}

func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, input := range op.inputs {
		length := input.Shape()[op.dim]
		grads[i] = sliceAlongDim(outputGrad, op.dim, offset, length)
		offset += length
	}
	return grads
}

func (op *CatOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

func (op *CatOp) Output() *tensor.RawTensor {
	return op.output
}

// sliceAlongDim extracts [start, start+length) along dim into a fresh
// contiguous tensor.
func sliceAlongDim(t *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := t.Shape()
	outShape := shape.Clone()
	outShape[dim] = length

	result, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sliceAlongDim: %v", err))
	}

	strides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	numOut := outShape.NumElements()

	switch t.DType() {
	case tensor.Float32:
		src := t.AsFloat32()
		dst := result.AsFloat32()
		for i := 0; i < numOut; i++ {
			srcIdx := 0
			temp := i
			for d := range outShape {
				coord := temp / outStrides[d]
				temp %= outStrides[d]
				if d == dim {
					coord += start
				}
				srcIdx += coord * strides[d]
			}
			dst[i] = src[srcIdx]
		}
	case tensor.Float64:
		src := t.AsFloat64()
		dst := result.AsFloat64()
		for i := 0; i < numOut; i++ {
			srcIdx := 0
			temp := i
			for d := range outShape {
				coord := temp / outStrides[d]
				temp %= outStrides[d]
				if d == dim {
					coord += start
				}
				srcIdx += coord * strides[d]
			}
			dst[i] = src[srcIdx]
		}
	default:
		panic(fmt.Sprintf("sliceAlongDim: unsupported dtype %s", t.DType()))
	}

	return result
}
