package nn

import (
	"fmt"
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// Config describes a stacked recurrent network.
type Config struct {
	Layers     int     // number of stacked cells, >= 1
	InputSize  int     // width of the timestep input to layer 1
	HiddenSize int     // hidden width of every layer
	Dropout    float64 // drop probability between layers, in [0, 1)
	Residual   bool    // enable skip connections between layer inputs
	Seed       int64   // seeds weight init and dropout masks
}

// Validate checks the configuration, returning a ConfigError describing
// the first problem found.
func (c Config) Validate() error {
	if c.Layers < 1 {
		return &ConfigError{Field: "Layers", Value: c.Layers, Msg: "must be at least 1"}
	}
	if c.InputSize < 1 {
		return &ConfigError{Field: "InputSize", Value: c.InputSize, Msg: "must be at least 1"}
	}
	if c.HiddenSize < 1 {
		return &ConfigError{Field: "HiddenSize", Value: c.HiddenSize, Msg: "must be at least 1"}
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return &ConfigError{Field: "Dropout", Value: c.Dropout, Msg: "must be in [0, 1)"}
	}
	return nil
}

// StackedGRU runs several GRUCells as a vertical stack for a single
// timestep. Layer 1 consumes the timestep input; every deeper layer
// consumes the hidden state produced below it, optionally combined with
// a residual skip and inter-layer dropout.
type StackedGRU[T tensor.DType, B tensor.Backend] struct {
	cfg      Config
	cells    []*GRUCell[T, B]
	dropouts []*Dropout[T, B] // one per layer boundary, feeding layers 2..L
	training bool
}

// NewStackedGRU builds the stack from a validated Config. All
// randomness (weight init, dropout masks) derives from cfg.Seed, so two
// stacks built from the same config are identical.
func NewStackedGRU[T tensor.DType, B tensor.Backend](cfg Config, b B) (*StackedGRU[T, B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	cells := make([]*GRUCell[T, B], cfg.Layers)
	for l := 0; l < cfg.Layers; l++ {
		in := cfg.InputSize
		if l > 0 {
			in = cfg.HiddenSize
		}
		cell, err := NewGRUCell[T, B](in, cfg.HiddenSize, rng, b)
		if err != nil {
			return nil, err
		}
		cells[l] = cell
	}

	dropouts := make([]*Dropout[T, B], 0, cfg.Layers-1)
	for l := 1; l < cfg.Layers; l++ {
		d, err := NewDropout[T, B](cfg.Dropout, rng, b)
		if err != nil {
			return nil, err
		}
		dropouts = append(dropouts, d)
	}

	return &StackedGRU[T, B]{
		cfg:      cfg,
		cells:    cells,
		dropouts: dropouts,
		training: true,
	}, nil
}

// residualEligible decides whether the input to layer (1-based) gets a
// skip connection. Layer 1 has nothing below it. Layer 2 would add the
// original timestep input, which only lines up when the input width
// equals the hidden width. From layer 3 on, both operands are hidden
// states of equal width, so the skip always applies.
func residualEligible(residual bool, layer, inputSize, hiddenSize int) bool {
	if !residual || layer <= 1 {
		return false
	}
	if layer > 2 {
		return true
	}
	return inputSize == hiddenSize
}

// Step advances every layer by one timestep.
//
// hidden holds one [batch, HiddenSize] state per layer, bottom first;
// x is the timestep input of shape [batch, InputSize]. Returns the next
// hidden states in the same order. On error the supplied states are
// untouched.
func (s *StackedGRU[T, B]) Step(hidden []*tensor.Tensor[T, B], x *tensor.Tensor[T, B]) ([]*tensor.Tensor[T, B], error) {
	if len(hidden) != s.cfg.Layers {
		return nil, &ShapeError{
			Op:   "stacked gru",
			Want: fmt.Sprintf("%d hidden states", s.cfg.Layers),
			Got:  fmt.Sprintf("%d hidden states", len(hidden)),
		}
	}

	next := make([]*tensor.Tensor[T, B], s.cfg.Layers)

	input := x
	var below *tensor.Tensor[T, B] // the input that fed the layer below
	for l := 1; l <= s.cfg.Layers; l++ {
		layerIn := input
		if l > 1 {
			if residualEligible(s.cfg.Residual, l, s.cfg.InputSize, s.cfg.HiddenSize) {
				// Fresh result: neither the lower layer's output nor
				// the skip source may be consumed inplace.
				restoreA := layerIn.Raw().ForceNonUnique()
				restoreB := below.Raw().ForceNonUnique()
				layerIn = layerIn.Add(below)
				restoreB()
				restoreA()
			}
			layerIn = s.dropout(l).Forward(layerIn)
		}

		h, err := s.cells[l-1].Forward(hidden[l-1], layerIn)
		if err != nil {
			return nil, err
		}

		next[l-1] = h
		below = layerIn
		input = h
	}

	return next, nil
}

// dropout returns the module guarding the input of layer l (1-based,
// l >= 2).
func (s *StackedGRU[T, B]) dropout(l int) *Dropout[T, B] {
	return s.dropouts[l-2]
}

// Train switches the stack (and its dropout layers) into training mode.
func (s *StackedGRU[T, B]) Train() {
	s.training = true
	for _, d := range s.dropouts {
		d.Train()
	}
}

// Eval switches the stack into inference mode: dropout becomes the
// identity and steps are fully deterministic.
func (s *StackedGRU[T, B]) Eval() {
	s.training = false
	for _, d := range s.dropouts {
		d.Eval()
	}
}

// Training reports whether the stack is in training mode.
func (s *StackedGRU[T, B]) Training() bool { return s.training }

// Config returns the configuration the stack was built from.
func (s *StackedGRU[T, B]) Config() Config { return s.cfg }

// Layers returns the number of stacked cells.
func (s *StackedGRU[T, B]) Layers() int { return s.cfg.Layers }

// Cell returns the cell for layer l (1-based).
func (s *StackedGRU[T, B]) Cell(l int) *GRUCell[T, B] { return s.cells[l-1] }

// InitHidden creates zero hidden states for the given batch size, one
// per layer.
func (s *StackedGRU[T, B]) InitHidden(batch int, b B) []*tensor.Tensor[T, B] {
	hidden := make([]*tensor.Tensor[T, B], s.cfg.Layers)
	for l := range hidden {
		hidden[l] = tensor.Zeros[T, B](tensor.Shape{batch, s.cfg.HiddenSize}, b)
	}
	return hidden
}

func (s *StackedGRU[T, B]) Parameters() []*Parameter[T, B] {
	var params []*Parameter[T, B]
	for _, c := range s.cells {
		params = append(params, c.Parameters()...)
	}
	return params
}

func (s *StackedGRU[T, B]) StateDict() map[string]*tensor.Tensor[T, B] {
	state := make(map[string]*tensor.Tensor[T, B])
	for l, c := range s.cells {
		prefix := fmt.Sprintf("cells.%d.", l)
		for k, v := range c.StateDict() {
			state[prefix+k] = v
		}
	}
	return state
}

func (s *StackedGRU[T, B]) LoadStateDict(state map[string]*tensor.Tensor[T, B]) error {
	for l, c := range s.cells {
		prefix := fmt.Sprintf("cells.%d.", l)
		if err := c.LoadStateDict(subDict(state, prefix)); err != nil {
			return fmt.Errorf("layer %d: %w", l+1, err)
		}
	}
	return nil
}
