package ops

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: bias[1,3H] + proj[B,3H] -> [B,3H]  (bias broadcast along dim 0)
//	Backward: grad[B,3H] -> gradBias[1,3H] (sum along dim 0)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()

	// Clone when shapes already match, so inplace operations downstream
	// cannot modify a shared gradient.
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	gradDims := len(gradShape)
	targetDims := len(targetShape)

	// Broadcasting aligns shapes from the right: sum away leading
	// dimensions the target never had.
	if targetDims < gradDims {
		dimsToSum := gradDims - targetDims
		result := grad
		for i := 0; i < dimsToSum; i++ {
			result = sumAlongDimension(result, 0)
		}
		grad = result
		gradShape = grad.Shape()
	}

	// Sum along dimensions where the target is 1.
	result := grad
	for i := 0; i < targetDims; i++ {
		if targetShape[i] == 1 && result.Shape()[i] > 1 {
			result = sumAlongDimension(result, i)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}

	return result
}

// sumAlongDimension sums a tensor along one dimension, keeping it with
// size 1 (the caller reshapes at the end if needed).
func sumAlongDimension(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	outShape := shape.Clone()
	outShape[dim] = 1

	result, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sumAlongDimension: %v", err))
	}

	strides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	numElements := shape.NumElements()

	coords := make([]int, len(shape))
	switch t.DType() {
	case tensor.Float32:
		src := t.AsFloat32()
		dst := result.AsFloat32()
		for i := 0; i < numElements; i++ {
			temp := i
			for d := range shape {
				coords[d] = temp / strides[d]
				temp %= strides[d]
			}
			outIdx := 0
			for d := range shape {
				coord := coords[d]
				if d == dim {
					coord = 0
				}
				outIdx += coord * outStrides[d]
			}
			dst[outIdx] += src[i]
		}
	case tensor.Float64:
		src := t.AsFloat64()
		dst := result.AsFloat64()
		for i := 0; i < numElements; i++ {
			temp := i
			for d := range shape {
				coords[d] = temp / strides[d]
				temp %= strides[d]
			}
			outIdx := 0
			for d := range shape {
				coord := coords[d]
				if d == dim {
					coord = 0
				}
				outIdx += coord * outStrides[d]
			}
			dst[outIdx] += src[i]
		}
	default:
		panic(fmt.Sprintf("sumAlongDimension: unsupported dtype %s", t.DType()))
	}

	return result
}

// onesLike creates a tensor of ones with the same shape/dtype as t.
func onesLike(t *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("onesLike: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = 1.0
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = 1.0
		}
	}

	return result
}

// zerosLike creates a zero tensor with the same shape/dtype as t.
func zerosLike(t *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("zerosLike: %v", err))
	}
	return result
}
