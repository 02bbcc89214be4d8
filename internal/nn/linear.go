package nn

import (
	"fmt"
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Linear applies an affine transformation: y = x @ W^T + b.
//
// The weight is stored as [outFeatures, inFeatures], so the forward
// pass transposes it. The bias has shape [outFeatures] and broadcasts
// over the batch dimension.
type Linear[T tensor.DType, B tensor.Backend] struct {
	weight *Parameter[T, B]
	bias   *Parameter[T, B] // nil when constructed without bias

	inFeatures  int
	outFeatures int
	backend     B
}

// NewLinear creates a linear layer with Xavier-uniform weights and zero
// bias. The randomness source is explicit for reproducible construction.
func NewLinear[T tensor.DType, B tensor.Backend](inFeatures, outFeatures int, withBias bool, rng *rand.Rand, b B) (*Linear[T, B], error) {
	if inFeatures <= 0 {
		return nil, &ConfigError{Field: "inFeatures", Value: inFeatures, Msg: "must be positive"}
	}
	if outFeatures <= 0 {
		return nil, &ConfigError{Field: "outFeatures", Value: outFeatures, Msg: "must be positive"}
	}

	weight := XavierUniform[T, B](tensor.Shape{outFeatures, inFeatures}, inFeatures, outFeatures, rng, b)

	l := &Linear[T, B]{
		weight:      NewParameter("weight", weight),
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		backend:     b,
	}

	if withBias {
		l.bias = NewParameter("bias", tensor.Zeros[T, B](tensor.Shape{outFeatures}, b))
	}

	return l, nil
}

// Forward computes y = x @ W^T + b for x of shape [batch, inFeatures].
func (l *Linear[T, B]) Forward(x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		return nil, &ShapeError{
			Op:   "linear",
			Want: fmt.Sprintf("[batch, %d]", l.inFeatures),
			Got:  shape.String(),
		}
	}

	out := x.MatMul(l.weight.Tensor().T())
	if l.bias != nil {
		out = out.Add(l.bias.Tensor())
	}
	return out, nil
}

// InFeatures returns the input dimension.
func (l *Linear[T, B]) InFeatures() int { return l.inFeatures }

// OutFeatures returns the output dimension.
func (l *Linear[T, B]) OutFeatures() int { return l.outFeatures }

// Weight returns the weight parameter.
func (l *Linear[T, B]) Weight() *Parameter[T, B] { return l.weight }

// Bias returns the bias parameter, or nil when the layer has none.
func (l *Linear[T, B]) Bias() *Parameter[T, B] { return l.bias }

func (l *Linear[T, B]) Parameters() []*Parameter[T, B] {
	params := []*Parameter[T, B]{l.weight}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

func (l *Linear[T, B]) StateDict() map[string]*tensor.Tensor[T, B] {
	state := map[string]*tensor.Tensor[T, B]{
		"weight": l.weight.Tensor(),
	}
	if l.bias != nil {
		state["bias"] = l.bias.Tensor()
	}
	return state
}

func (l *Linear[T, B]) LoadStateDict(state map[string]*tensor.Tensor[T, B]) error {
	w, ok := state["weight"]
	if !ok {
		return fmt.Errorf("linear: state dict missing %q", "weight")
	}
	if err := l.weight.SetTensor(w); err != nil {
		return err
	}

	if l.bias != nil {
		b, ok := state["bias"]
		if !ok {
			return fmt.Errorf("linear: state dict missing %q", "bias")
		}
		if err := l.bias.SetTensor(b); err != nil {
			return err
		}
	}
	return nil
}
