// Package autodiff provides reverse-mode automatic differentiation via
// a backend decorator.
//
// AutodiffBackend wraps any tensor.Backend and records each primitive
// call on a GradientTape before delegating. Code written against the
// Backend interface gains gradients without modification:
//
//	base := cpu.New()
//	ad := autodiff.New(base)
//	// ... forward pass using ad as the backend ...
//	grads, err := ad.Tape().Backward(loss, base)
package autodiff

import (
	"github.com/klgraham/OpenNMT/internal/autodiff/ops"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// AutodiffBackend decorates an inner backend with tape recording.
//
// While recording, inputs are temporarily marked non-unique so the
// inner backend's inplace fast path cannot overwrite tensors the tape
// has saved for the backward pass.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps a backend with gradient recording.
func New[B tensor.Backend](inner B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: inner,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape.
func (a *AutodiffBackend[B]) Tape() *GradientTape {
	return a.tape
}

// Inner returns the wrapped backend.
func (a *AutodiffBackend[B]) Inner() B {
	return a.inner
}

// InnerBackend returns the wrapped backend as the plain interface, for
// callers that hold the decorator behind tensor.Backend.
func (a *AutodiffBackend[B]) InnerBackend() tensor.Backend {
	return a.inner
}

// protect marks tensors non-unique for the duration of one delegated
// call, returning a restore function.
func (a *AutodiffBackend[B]) protect(tensors ...*tensor.RawTensor) func() {
	if !a.tape.IsRecording() {
		return func() {}
	}
	restores := make([]func(), 0, len(tensors))
	for _, t := range tensors {
		restores = append(restores, t.ForceNonUnique())
	}
	return func() {
		for _, r := range restores {
			r()
		}
	}
}

// Add performs element-wise addition and records an AddOp.
func (a *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	restore := a.protect(x, y)
	out := a.inner.Add(x, y)
	restore()
	a.tape.Record(ops.NewAddOp(x, y, out))
	return out
}

// Sub performs element-wise subtraction and records a SubOp.
func (a *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	restore := a.protect(x, y)
	out := a.inner.Sub(x, y)
	restore()
	a.tape.Record(ops.NewSubOp(x, y, out))
	return out
}

// Mul performs element-wise multiplication and records a MulOp.
func (a *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	restore := a.protect(x, y)
	out := a.inner.Mul(x, y)
	restore()
	a.tape.Record(ops.NewMulOp(x, y, out))
	return out
}

// MatMul performs matrix multiplication and records a MatMulOp.
func (a *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.MatMul(x, y)
	a.tape.Record(ops.NewMatMulOp(x, y, out))
	return out
}

// Reshape changes the shape and records a ReshapeOp.
func (a *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out := a.inner.Reshape(t, newShape)
	a.tape.Record(ops.NewReshapeOp(t, out))
	return out
}

// Transpose permutes dimensions and records a TransposeOp.
func (a *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	out := a.inner.Transpose(t, axes...)
	a.tape.Record(ops.NewTransposeOp(t, out, axes))
	return out
}

// Chunk splits a tensor and records a multi-output ChunkOp.
func (a *AutodiffBackend[B]) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	outs := a.inner.Chunk(x, n, dim)
	if dim < 0 {
		dim += len(x.Shape())
	}
	a.tape.Record(ops.NewChunkOp(x, outs, dim))
	return outs
}

// Cat concatenates tensors and records a CatOp.
func (a *AutodiffBackend[B]) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	out := a.inner.Cat(tensors, dim)
	if dim < 0 {
		dim += len(out.Shape())
	}
	a.tape.Record(ops.NewCatOp(tensors, out, dim))
	return out
}

// Sigmoid applies the logistic function and records a SigmoidOp.
func (a *AutodiffBackend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sigmoid(x)
	a.tape.Record(ops.NewSigmoidOp(x, out))
	return out
}

// Tanh applies the hyperbolic tangent and records a TanhOp.
func (a *AutodiffBackend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Tanh(x)
	a.tape.Record(ops.NewTanhOp(x, out))
	return out
}

// Name returns the backend name.
func (a *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + a.inner.Name() + ")"
}

// Device returns the inner backend's device.
func (a *AutodiffBackend[B]) Device() tensor.Device {
	return a.inner.Device()
}
