// Package nn provides neural network building blocks: linear
// projections, activations, dropout, and the gated recurrent layers
// built from them.
package nn

import "github.com/klgraham/OpenNMT/internal/tensor"

// Module is the interface shared by all trainable components.
type Module[T tensor.DType, B tensor.Backend] interface {
	// Parameters returns all trainable parameters of the module.
	Parameters() []*Parameter[T, B]

	// StateDict returns the module's parameters keyed by name, for
	// serialization and weight sharing.
	StateDict() map[string]*tensor.Tensor[T, B]

	// LoadStateDict replaces parameter values from a state dict.
	LoadStateDict(state map[string]*tensor.Tensor[T, B]) error
}
