package nn

import (
	"fmt"
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// GRUCell advances one recurrent layer by a single timestep.
//
// Both the input and the previous hidden state go through fused affine
// projections producing [batch, 3*hidden] pre-activations, which are
// split into reset, update, and candidate thirds:
//
//	r = σ(X_r + H_r)
//	i = σ(X_i + H_i)
//	n = tanh(X_n + r ⊙ H_n)
//	h' = n + i ⊙ (h − n)
//
// The update gate interpolates between the candidate and the previous
// hidden state: i = 0 adopts the candidate, i = 1 keeps the state.
type GRUCell[T tensor.DType, B tensor.Backend] struct {
	x2h *Linear[T, B] // input projection  [inputSize -> 3*hiddenSize]
	h2h *Linear[T, B] // hidden projection [hiddenSize -> 3*hiddenSize]

	inputSize  int
	hiddenSize int
}

// NewGRUCell creates a single-layer cell. Weights are Xavier-uniform
// from the supplied source; both projections carry biases.
func NewGRUCell[T tensor.DType, B tensor.Backend](inputSize, hiddenSize int, rng *rand.Rand, b B) (*GRUCell[T, B], error) {
	if inputSize <= 0 {
		return nil, &ConfigError{Field: "inputSize", Value: inputSize, Msg: "must be positive"}
	}
	if hiddenSize <= 0 {
		return nil, &ConfigError{Field: "hiddenSize", Value: hiddenSize, Msg: "must be positive"}
	}

	x2h, err := NewLinear[T, B](inputSize, 3*hiddenSize, true, rng, b)
	if err != nil {
		return nil, err
	}
	h2h, err := NewLinear[T, B](hiddenSize, 3*hiddenSize, true, rng, b)
	if err != nil {
		return nil, err
	}

	return &GRUCell[T, B]{
		x2h:        x2h,
		h2h:        h2h,
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
	}, nil
}

// Forward computes the next hidden state for one timestep.
// prevH has shape [batch, hiddenSize], x has shape [batch, inputSize],
// and the batch dimensions must agree.
func (c *GRUCell[T, B]) Forward(prevH, x *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	xShape := x.Shape()
	hShape := prevH.Shape()

	if len(xShape) != 2 || xShape[1] != c.inputSize {
		return nil, &ShapeError{
			Op:   "gru",
			Want: fmt.Sprintf("input [batch, %d]", c.inputSize),
			Got:  xShape.String(),
		}
	}
	if len(hShape) != 2 || hShape[1] != c.hiddenSize {
		return nil, &ShapeError{
			Op:   "gru",
			Want: fmt.Sprintf("hidden [batch, %d]", c.hiddenSize),
			Got:  hShape.String(),
		}
	}
	if xShape[0] != hShape[0] {
		return nil, &ShapeError{
			Op:   "gru",
			Want: fmt.Sprintf("hidden batch %d (matching input)", xShape[0]),
			Got:  fmt.Sprintf("hidden batch %d", hShape[0]),
		}
	}

	xProj, err := c.x2h.Forward(x)
	if err != nil {
		return nil, err
	}
	hProj, err := c.h2h.Forward(prevH)
	if err != nil {
		return nil, err
	}

	xg := xProj.Chunk(3, -1) // reset, update, candidate
	hg := hProj.Chunk(3, -1)

	r := xg[0].Add(hg[0]).Sigmoid()
	i := xg[1].Add(hg[1]).Sigmoid()
	n := xg[2].Add(r.Mul(hg[2])).Tanh()

	// h' = n + i ⊙ (h − n). The caller keeps ownership of prevH, so it
	// must not be consumed by the backend's inplace fast path.
	restore := prevH.Raw().ForceNonUnique()
	defer restore()
	return n.Add(i.Mul(prevH.Sub(n))), nil
}

// InputSize returns the expected input width.
func (c *GRUCell[T, B]) InputSize() int { return c.inputSize }

// HiddenSize returns the hidden state width.
func (c *GRUCell[T, B]) HiddenSize() int { return c.hiddenSize }

// InputProjection returns the input-to-hidden linear layer.
func (c *GRUCell[T, B]) InputProjection() *Linear[T, B] { return c.x2h }

// HiddenProjection returns the hidden-to-hidden linear layer.
func (c *GRUCell[T, B]) HiddenProjection() *Linear[T, B] { return c.h2h }

func (c *GRUCell[T, B]) Parameters() []*Parameter[T, B] {
	return append(c.x2h.Parameters(), c.h2h.Parameters()...)
}

func (c *GRUCell[T, B]) StateDict() map[string]*tensor.Tensor[T, B] {
	state := make(map[string]*tensor.Tensor[T, B])
	for k, v := range c.x2h.StateDict() {
		state["x2h."+k] = v
	}
	for k, v := range c.h2h.StateDict() {
		state["h2h."+k] = v
	}
	return state
}

func (c *GRUCell[T, B]) LoadStateDict(state map[string]*tensor.Tensor[T, B]) error {
	if err := c.x2h.LoadStateDict(subDict(state, "x2h.")); err != nil {
		return err
	}
	return c.h2h.LoadStateDict(subDict(state, "h2h."))
}

// subDict extracts entries under a prefix, stripping it.
func subDict[T tensor.DType, B tensor.Backend](state map[string]*tensor.Tensor[T, B], prefix string) map[string]*tensor.Tensor[T, B] {
	sub := make(map[string]*tensor.Tensor[T, B])
	for k, v := range state {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			sub[k[len(prefix):]] = v
		}
	}
	return sub
}
