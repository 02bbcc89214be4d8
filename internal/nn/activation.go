package nn

import "github.com/klgraham/OpenNMT/internal/tensor"

// Sigmoid is the logistic activation as a parameterless module.
type Sigmoid[T tensor.DType, B tensor.Backend] struct{}

// NewSigmoid creates a sigmoid activation module.
func NewSigmoid[T tensor.DType, B tensor.Backend]() *Sigmoid[T, B] {
	return &Sigmoid[T, B]{}
}

func (s *Sigmoid[T, B]) Forward(x *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	return x.Sigmoid()
}

func (s *Sigmoid[T, B]) Parameters() []*Parameter[T, B] { return nil }

func (s *Sigmoid[T, B]) StateDict() map[string]*tensor.Tensor[T, B] {
	return map[string]*tensor.Tensor[T, B]{}
}

func (s *Sigmoid[T, B]) LoadStateDict(state map[string]*tensor.Tensor[T, B]) error { return nil }

// Tanh is the hyperbolic tangent activation as a parameterless module.
type Tanh[T tensor.DType, B tensor.Backend] struct{}

// NewTanh creates a tanh activation module.
func NewTanh[T tensor.DType, B tensor.Backend]() *Tanh[T, B] {
	return &Tanh[T, B]{}
}

func (t *Tanh[T, B]) Forward(x *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	return x.Tanh()
}

func (t *Tanh[T, B]) Parameters() []*Parameter[T, B] { return nil }

func (t *Tanh[T, B]) StateDict() map[string]*tensor.Tensor[T, B] {
	return map[string]*tensor.Tensor[T, B]{}
}

func (t *Tanh[T, B]) LoadStateDict(state map[string]*tensor.Tensor[T, B]) error { return nil }
