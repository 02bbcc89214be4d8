package autodiff

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// BackwardCapable is the interface a backend must satisfy for the
// Backward helper: it carries a tape and exposes the inner backend the
// replay should run on.
type BackwardCapable interface {
	Tape() *GradientTape
	InnerBackend() tensor.Backend
}

// Gradients holds the result of a backward pass, keyed by the raw
// tensors that participated in the forward computation.
type Gradients struct {
	grads map[*tensor.RawTensor]*tensor.RawTensor
}

// Get returns the gradient for a raw tensor, or false if the tensor
// did not contribute to the differentiated output.
func (g *Gradients) Get(t *tensor.RawTensor) (*tensor.RawTensor, bool) {
	grad, ok := g.grads[t]
	return grad, ok
}

// GetFor returns the gradient for a typed tensor as a typed tensor on
// the inner backend.
func GetFor[T tensor.DType, B tensor.Backend](g *Gradients, t *tensor.Tensor[T, B], b B) (*tensor.Tensor[T, B], bool) {
	raw, ok := g.grads[t.Raw()]
	if !ok {
		return nil, false
	}
	return tensor.New[T, B](raw, b), true
}

// Len returns the number of tensors with gradients.
func (g *Gradients) Len() int {
	return len(g.grads)
}

// Backward runs reverse-mode differentiation from output, which must
// have been computed on a backend satisfying BackwardCapable.
func Backward[T tensor.DType, B tensor.Backend](output *tensor.Tensor[T, B]) (*Gradients, error) {
	capable, ok := any(output.Backend()).(BackwardCapable)
	if !ok {
		return nil, fmt.Errorf("backward: backend %T does not record gradients", output.Backend())
	}

	grads, err := capable.Tape().Backward(output.Raw(), capable.InnerBackend())
	if err != nil {
		return nil, err
	}

	return &Gradients{grads: grads}, nil
}
