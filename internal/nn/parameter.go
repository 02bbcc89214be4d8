package nn

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Parameter is a named trainable tensor.
type Parameter[T tensor.DType, B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[T, B]
}

// NewParameter wraps a tensor as a named parameter.
func NewParameter[T tensor.DType, B tensor.Backend](name string, t *tensor.Tensor[T, B]) *Parameter[T, B] {
	return &Parameter[T, B]{name: name, tensor: t}
}

// Name returns the parameter's name.
func (p *Parameter[T, B]) Name() string {
	return p.name
}

// Tensor returns the parameter's current value.
func (p *Parameter[T, B]) Tensor() *tensor.Tensor[T, B] {
	return p.tensor
}

// SetTensor replaces the parameter's value. The new tensor must match
// the current shape.
func (p *Parameter[T, B]) SetTensor(t *tensor.Tensor[T, B]) error {
	if !p.tensor.Shape().Equal(t.Shape()) {
		return fmt.Errorf("parameter %q: shape %v does not match %v", p.name, t.Shape(), p.tensor.Shape())
	}
	p.tensor = t
	return nil
}
