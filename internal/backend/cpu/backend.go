// Package cpu implements the reference CPU backend.
package cpu

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// CPUBackend implements tensor operations in pure Go.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, addF32, addF64)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, subF32, subF64)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, mulF32, mulF64)
}

// binaryOp dispatches an element-wise binary operation, choosing between
// the contiguous fast path and the strided broadcasting path.
func (cpu *CPUBackend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		// Fast path: same shape. Inplace into a when it is the sole owner
		// of its buffer (autodiff forces non-uniqueness to disable this).
		if a.IsUnique() {
			binaryInplace(a, b, f32, f64)
			return a
		}
		binaryContiguous(result, a, b, f32, f64)
	} else {
		binaryBroadcast(result, a, b, outShape, f32, f64)
	}

	return result
}

// Reshape returns a tensor with the same data but a different shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}

	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}

	copy(result.Data(), t.Data())
	return result
}

// Transpose transposes the tensor by permuting its dimensions.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	transposeData(result, t, axes)

	return result
}

// transposeData copies elements into their permuted positions.
func transposeData(result, t *tensor.RawTensor, axes []int) {
	srcShape := t.Shape()
	srcStrides := srcShape.ComputeStrides()
	dstStrides := result.Shape().ComputeStrides()
	numElements := srcShape.NumElements()

	copyElem := elemCopier(result, t)

	coords := make([]int, len(srcShape))
	for i := 0; i < numElements; i++ {
		temp := i
		for d := range srcShape {
			coords[d] = temp / srcStrides[d]
			temp %= srcStrides[d]
		}

		dstIdx := 0
		for d, ax := range axes {
			dstIdx += coords[ax] * dstStrides[d]
		}

		copyElem(dstIdx, i)
	}
}

// elemCopier returns a dst[i] = src[j] closure for the tensor's dtype.
func elemCopier(dst, src *tensor.RawTensor) func(di, si int) {
	switch src.DType() {
	case tensor.Float32:
		d, s := dst.AsFloat32(), src.AsFloat32()
		return func(di, si int) { d[di] = s[si] }
	case tensor.Float64:
		d, s := dst.AsFloat64(), src.AsFloat64()
		return func(di, si int) { d[di] = s[si] }
	default:
		panic(fmt.Sprintf("unsupported dtype %s", src.DType()))
	}
}

func addF32(x, y float32) float32 { return x + y }
func subF32(x, y float32) float32 { return x - y }
func mulF32(x, y float32) float32 { return x * y }
func addF64(x, y float64) float64 { return x + y }
func subF64(x, y float64) float64 { return x - y }
func mulF64(x, y float64) float64 { return x * y }
