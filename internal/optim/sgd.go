package optim

import (
	"fmt"

	"github.com/klgraham/OpenNMT/internal/autodiff"
	"github.com/klgraham/OpenNMT/internal/nn"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// SGD implements plain stochastic gradient descent: w -= lr * g.
type SGD[T tensor.DType, B tensor.Backend] struct {
	lr T
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD[T tensor.DType, B tensor.Backend](lr T) *SGD[T, B] {
	return &SGD[T, B]{lr: lr}
}

// LearningRate returns the configured learning rate.
func (s *SGD[T, B]) LearningRate() T { return s.lr }

// Step applies the update in place on each parameter's buffer.
func (s *SGD[T, B]) Step(params []*nn.Parameter[T, B], grads *autodiff.Gradients) error {
	for _, p := range params {
		raw, ok := grads.Get(p.Tensor().Raw())
		if !ok {
			continue
		}

		if !raw.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("sgd: gradient shape %v does not match parameter %q shape %v",
				raw.Shape(), p.Name(), p.Tensor().Shape())
		}

		data := p.Tensor().Data()
		switch raw.DType() {
		case tensor.Float32:
			grad := raw.AsFloat32()
			for i := range data {
				data[i] -= s.lr * T(grad[i])
			}
		case tensor.Float64:
			grad := raw.AsFloat64()
			for i := range data {
				data[i] -= s.lr * T(grad[i])
			}
		default:
			return fmt.Errorf("sgd: unsupported gradient dtype %s", raw.DType())
		}
	}
	return nil
}
