package nn

import (
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Dropout zeroes elements with probability p during training and scales
// the survivors by 1/(1-p), so activation expectations match between
// training and inference. In eval mode it is the identity.
//
// The mask is applied as an element-wise multiply, so gradients flow
// through the surviving elements untouched.
type Dropout[T tensor.DType, B tensor.Backend] struct {
	p        float64
	rng      *rand.Rand
	training bool
	backend  B
}

// NewDropout creates a dropout module. p must be in [0, 1). The module
// starts in training mode.
func NewDropout[T tensor.DType, B tensor.Backend](p float64, rng *rand.Rand, b B) (*Dropout[T, B], error) {
	if p < 0 || p >= 1 {
		return nil, &ConfigError{Field: "p", Value: p, Msg: "must be in [0, 1)"}
	}
	return &Dropout[T, B]{p: p, rng: rng, training: true, backend: b}, nil
}

// Train switches the module into training mode.
func (d *Dropout[T, B]) Train() { d.training = true }

// Eval switches the module into inference mode (identity).
func (d *Dropout[T, B]) Eval() { d.training = false }

// Forward applies the dropout mask, or returns x unchanged when the
// module is in eval mode or p is zero.
func (d *Dropout[T, B]) Forward(x *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	if !d.training || d.p == 0 {
		return x
	}

	scale := T(1.0 / (1.0 - d.p))
	mask := tensor.Zeros[T, B](x.Shape(), d.backend)
	data := mask.Data()
	for i := range data {
		if d.rng.Float64() >= d.p {
			data[i] = scale
		}
	}

	// mask is fresh and unique, so an inplace backend can consume the
	// mask buffer rather than x.
	return mask.Mul(x)
}

func (d *Dropout[T, B]) Parameters() []*Parameter[T, B] { return nil }

func (d *Dropout[T, B]) StateDict() map[string]*tensor.Tensor[T, B] {
	return map[string]*tensor.Tensor[T, B]{}
}

func (d *Dropout[T, B]) LoadStateDict(state map[string]*tensor.Tensor[T, B]) error { return nil }
