package cpu

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// binaryInplace applies op(a, b) writing results into a.
// Caller must have verified matching shapes and buffer uniqueness.
func binaryInplace(
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) {
	switch a.DType() {
	case tensor.Float32:
		av, bv := a.AsFloat32(), b.AsFloat32()
		for i := range av {
			av[i] = f32(av[i], bv[i])
		}
	case tensor.Float64:
		av, bv := a.AsFloat64(), b.AsFloat64()
		for i := range av {
			av[i] = f64(av[i], bv[i])
		}
	default:
		panic(fmt.Sprintf("unsupported dtype %s", a.DType()))
	}
}

// binaryContiguous applies op(a, b) into result for same-shape operands.
func binaryContiguous(
	result, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) {
	switch a.DType() {
	case tensor.Float32:
		rv, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := range rv {
			rv[i] = f32(av[i], bv[i])
		}
	case tensor.Float64:
		rv, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := range rv {
			rv[i] = f64(av[i], bv[i])
		}
	default:
		panic(fmt.Sprintf("unsupported dtype %s", a.DType()))
	}
}

// binaryBroadcast applies op(a, b) into result, mapping each output
// coordinate back to the (possibly size-1) source coordinates.
func binaryBroadcast(
	result, a, b *tensor.RawTensor,
	outShape tensor.Shape,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) {
	outStrides := outShape.ComputeStrides()
	numElements := outShape.NumElements()

	aIndex := broadcastIndexer(a.Shape(), outShape)
	bIndex := broadcastIndexer(b.Shape(), outShape)

	coords := make([]int, len(outShape))
	for i := 0; i < numElements; i++ {
		temp := i
		for d := range outShape {
			coords[d] = temp / outStrides[d]
			temp %= outStrides[d]
		}

		ai := aIndex(coords)
		bi := bIndex(coords)

		switch a.DType() {
		case tensor.Float32:
			result.AsFloat32()[i] = f32(a.AsFloat32()[ai], b.AsFloat32()[bi])
		case tensor.Float64:
			result.AsFloat64()[i] = f64(a.AsFloat64()[ai], b.AsFloat64()[bi])
		default:
			panic(fmt.Sprintf("unsupported dtype %s", a.DType()))
		}
	}
}

// broadcastIndexer returns a function mapping output coordinates to the
// flat index in a source tensor of the given shape, treating size-1 and
// missing dimensions as broadcast (stride 0).
func broadcastIndexer(srcShape, outShape tensor.Shape) func(coords []int) int {
	srcStrides := srcShape.ComputeStrides()
	offset := len(outShape) - len(srcShape)

	return func(coords []int) int {
		idx := 0
		for d := range srcShape {
			coord := coords[d+offset]
			if srcShape[d] == 1 {
				coord = 0
			}
			idx += coord * srcStrides[d]
		}
		return idx
	}
}
