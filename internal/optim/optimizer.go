// Package optim implements gradient-based parameter updates.
package optim

import (
	"github.com/klgraham/OpenNMT/internal/autodiff"
	"github.com/klgraham/OpenNMT/internal/nn"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Optimizer updates parameters from the gradients of a backward pass.
type Optimizer[T tensor.DType, B tensor.Backend] interface {
	// Step applies one update using the gradients. Parameters without a
	// gradient are left unchanged.
	Step(params []*nn.Parameter[T, B], grads *autodiff.Gradients) error
}
