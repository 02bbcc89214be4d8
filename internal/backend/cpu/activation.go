package cpu

import (
	"fmt"
	"math"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Sigmoid computes the element-wise logistic function: σ(x) = 1 / (1 + exp(-x)).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sigmoid", x,
		func(v float32) float32 { return float32(1.0 / (1.0 + math.Exp(float64(-v)))) },
		func(v float64) float64 { return 1.0 / (1.0 + math.Exp(-v)) },
	)
}

// Tanh computes the element-wise hyperbolic tangent.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("tanh", x,
		func(v float32) float32 { return float32(math.Tanh(float64(v))) },
		func(v float64) float64 { return math.Tanh(v) },
	)
}

// unaryOp applies an element-wise function into a fresh tensor.
func (cpu *CPUBackend) unaryOp(
	name string,
	x *tensor.RawTensor,
	f32 func(v float32) float32,
	f64 func(v float64) float64,
) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = f32(v)
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = f64(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}
