package cpu

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation
// dimension. Supports negative dim indexing (-1 = last dimension).
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim

	result, err := tensor.NewRaw(outShape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	outStrides := outShape.ComputeStrides()
	offset := 0
	for _, t := range tensors {
		tShape := t.Shape()
		strides := tShape.ComputeStrides()
		numElements := tShape.NumElements()
		copyElem := elemCopier(result, t)

		for i := 0; i < numElements; i++ {
			outIdx := 0
			temp := i
			for d := 0; d < ndim; d++ {
				coord := temp / strides[d]
				temp %= strides[d]
				if d == dim {
					coord += offset
				}
				outIdx += coord * outStrides[d]
			}
			copyElem(outIdx, i)
		}

		offset += tShape[dim]
	}

	return result
}

// Chunk splits a tensor into n equal parts along the specified dimension.
//
// The dimension size must be divisible by n. Supports negative dim
// indexing (-1 = last dimension). This is how a fused triple-gate
// projection [B, 3H] is split into its reset/update/candidate thirds.
func (cpu *CPUBackend) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	if n <= 0 {
		panic(fmt.Sprintf("chunk: n must be positive, got %d", n))
	}

	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("chunk: dimension %d out of range for %dD tensor", dim, ndim))
	}

	dimSize := shape[dim]
	if dimSize%n != 0 {
		panic(fmt.Sprintf("chunk: dimension %d size %d not divisible by %d", dim, dimSize, n))
	}

	chunkSize := dimSize / n
	chunkShape := shape.Clone()
	chunkShape[dim] = chunkSize

	results := make([]*tensor.RawTensor, n)
	copiers := make([]func(di, si int), n)
	for i := 0; i < n; i++ {
		chunk, err := tensor.NewRaw(chunkShape, x.DType(), cpu.device)
		if err != nil {
			panic(fmt.Sprintf("chunk: %v", err))
		}
		results[i] = chunk
		copiers[i] = elemCopier(chunk, x)
	}

	strides := shape.ComputeStrides()
	outStrides := chunkShape.ComputeStrides()
	numElements := shape.NumElements()

	coords := make([]int, ndim)
	for i := 0; i < numElements; i++ {
		temp := i
		for d := 0; d < ndim; d++ {
			coords[d] = temp / strides[d]
			temp %= strides[d]
		}

		chunkIdx := coords[dim] / chunkSize
		localCoord := coords[dim] % chunkSize

		outIdx := 0
		for d := 0; d < ndim; d++ {
			if d == dim {
				outIdx += localCoord * outStrides[d]
			} else {
				outIdx += coords[d] * outStrides[d]
			}
		}

		copiers[chunkIdx](outIdx, i)
	}

	return results
}
