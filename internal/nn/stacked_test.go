package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klgraham/OpenNMT/internal/backend/cpu"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

func newStack(t *testing.T, cfg Config) *StackedGRU[float32, *cpu.CPUBackend] {
	t.Helper()
	s, err := NewStackedGRU[float32](cfg, cpu.New())
	require.NoError(t, err)
	return s
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Layers: 2, InputSize: 4, HiddenSize: 8, Dropout: 0.5, Seed: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"zero layers", func(c *Config) { c.Layers = 0 }, "Layers"},
		{"negative input", func(c *Config) { c.InputSize = -1 }, "InputSize"},
		{"zero hidden", func(c *Config) { c.HiddenSize = 0 }, "HiddenSize"},
		{"negative dropout", func(c *Config) { c.Dropout = -0.1 }, "Dropout"},
		{"dropout of one", func(c *Config) { c.Dropout = 1.0 }, "Dropout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mut(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNewStackedGRURejectsInvalidConfig(t *testing.T) {
	_, err := NewStackedGRU[float32](Config{Layers: 0, InputSize: 1, HiddenSize: 1}, cpu.New())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestStackedStepShapes(t *testing.T) {
	s := newStack(t, Config{Layers: 3, InputSize: 4, HiddenSize: 6, Seed: 1})
	backend := cpu.New()

	hidden := s.InitHidden(2, backend)
	require.Len(t, hidden, 3)

	x := tensor.Ones[float32](tensor.Shape{2, 4}, backend)
	next, err := s.Step(hidden, x)
	require.NoError(t, err)

	require.Len(t, next, 3)
	for _, h := range next {
		assert.Equal(t, tensor.Shape{2, 6}, h.Shape())
	}
}

func TestStackedStepHiddenCountMismatch(t *testing.T) {
	s := newStack(t, Config{Layers: 3, InputSize: 4, HiddenSize: 6, Seed: 1})
	backend := cpu.New()

	hidden := s.InitHidden(2, backend)[:2]
	x := tensor.Ones[float32](tensor.Shape{2, 4}, backend)

	_, err := s.Step(hidden, x)
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

// A one-layer stack is exactly a single cell built from the same seed.
func TestStackedSingleLayerMatchesCell(t *testing.T) {
	backend := cpu.New()
	seed := int64(21)

	s := newStack(t, Config{Layers: 1, InputSize: 3, HiddenSize: 5, Seed: seed})
	cell, err := NewGRUCell[float32](3, 5, rand.New(rand.NewSource(seed)), backend)
	require.NoError(t, err)

	h0 := tensor.Zeros[float32](tensor.Shape{2, 5}, backend)
	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)

	fromStack, err := s.Step([]*tensor.Tensor[float32, *cpu.CPUBackend]{h0}, x)
	require.NoError(t, err)

	fromCell, err := cell.Forward(h0, x)
	require.NoError(t, err)

	assert.InDeltaSlice(t, fromCell.Data(), fromStack[0].Data(), 1e-6)
}

func TestResidualEligible(t *testing.T) {
	tests := []struct {
		name       string
		residual   bool
		layer      int
		inputSize  int
		hiddenSize int
		want       bool
	}{
		{"disabled", false, 3, 8, 8, false},
		{"first layer", true, 1, 8, 8, false},
		{"second layer matching widths", true, 2, 8, 8, true},
		{"second layer differing widths", true, 2, 4, 8, false},
		{"third layer differing widths", true, 3, 4, 8, true},
		{"deep layer", true, 7, 4, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := residualEligible(tt.residual, tt.layer, tt.inputSize, tt.hiddenSize)
			assert.Equal(t, tt.want, got)
		})
	}
}

// With two layers and differing widths the skip into layer 2 cannot
// apply, so the residual flag must not change the output.
func TestResidualSkippedAtLayerTwoWhenWidthsDiffer(t *testing.T) {
	backend := cpu.New()

	base := Config{Layers: 2, InputSize: 4, HiddenSize: 8, Seed: 5}
	withRes := base
	withRes.Residual = true

	a := newStack(t, base)
	b := newStack(t, withRes)

	h := tensor.Zeros[float32](tensor.Shape{1, 8}, backend)
	x := tensor.Ones[float32](tensor.Shape{1, 4}, backend)
	hiddenA := []*tensor.Tensor[float32, *cpu.CPUBackend]{h, h}
	hiddenB := []*tensor.Tensor[float32, *cpu.CPUBackend]{h, h}

	outA, err := a.Step(hiddenA, x)
	require.NoError(t, err)
	outB, err := b.Step(hiddenB, x)
	require.NoError(t, err)

	for l := range outA {
		assert.InDeltaSlice(t, outA[l].Data(), outB[l].Data(), 1e-6)
	}
}

// From layer 3 on both operands are hidden-width, so the skip applies
// and the outputs must diverge.
func TestResidualAppliesFromLayerThree(t *testing.T) {
	backend := cpu.New()

	base := Config{Layers: 3, InputSize: 4, HiddenSize: 8, Seed: 5}
	withRes := base
	withRes.Residual = true

	a := newStack(t, base)
	b := newStack(t, withRes)

	x := tensor.Ones[float32](tensor.Shape{1, 4}, backend)

	outA, err := a.Step(a.InitHidden(1, backend), x)
	require.NoError(t, err)
	outB, err := b.Step(b.InitHidden(1, backend), x)
	require.NoError(t, err)

	// Layers 1 and 2 are unaffected.
	assert.InDeltaSlice(t, outA[0].Data(), outB[0].Data(), 1e-6)
	assert.InDeltaSlice(t, outA[1].Data(), outB[1].Data(), 1e-6)

	// Layer 3 sees the skip.
	maxDiff := 0.0
	for i, v := range outA[2].Data() {
		diff := float64(v - outB[2].Data()[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	assert.Greater(t, maxDiff, 1e-6)
}

// When the timestep input is hidden-width, layer 2 gets the skip too.
func TestResidualAppliesAtLayerTwoWhenWidthsMatch(t *testing.T) {
	backend := cpu.New()

	base := Config{Layers: 2, InputSize: 8, HiddenSize: 8, Seed: 5}
	withRes := base
	withRes.Residual = true

	a := newStack(t, base)
	b := newStack(t, withRes)

	x := tensor.Ones[float32](tensor.Shape{1, 8}, backend)

	outA, err := a.Step(a.InitHidden(1, backend), x)
	require.NoError(t, err)
	outB, err := b.Step(b.InitHidden(1, backend), x)
	require.NoError(t, err)

	maxDiff := 0.0
	for i, v := range outA[1].Data() {
		diff := float64(v - outB[1].Data()[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	assert.Greater(t, maxDiff, 1e-6)
}

// In eval mode dropout is the identity, so a stack configured with
// dropout behaves exactly like one without.
func TestStackedEvalDisablesDropout(t *testing.T) {
	backend := cpu.New()

	dry := Config{Layers: 3, InputSize: 4, HiddenSize: 8, Seed: 5}
	wet := dry
	wet.Dropout = 0.5

	a := newStack(t, dry)
	b := newStack(t, wet)
	b.Eval()

	x := tensor.Ones[float32](tensor.Shape{2, 4}, backend)

	outA, err := a.Step(a.InitHidden(2, backend), x)
	require.NoError(t, err)
	outB, err := b.Step(b.InitHidden(2, backend), x)
	require.NoError(t, err)

	for l := range outA {
		assert.InDeltaSlice(t, outA[l].Data(), outB[l].Data(), 1e-6)
	}
}

func TestStackedEvalIsDeterministic(t *testing.T) {
	backend := cpu.New()
	cfg := Config{Layers: 2, InputSize: 4, HiddenSize: 8, Dropout: 0.5, Seed: 5}

	s := newStack(t, cfg)
	s.Eval()

	x := tensor.Ones[float32](tensor.Shape{1, 4}, backend)

	out1, err := s.Step(s.InitHidden(1, backend), x)
	require.NoError(t, err)
	out2, err := s.Step(s.InitHidden(1, backend), x)
	require.NoError(t, err)

	for l := range out1 {
		assert.Equal(t, out1[l].Data(), out2[l].Data())
	}
}

// Two stacks built from the same config replay the same weights and
// the same dropout masks.
func TestStackedSeedReproducible(t *testing.T) {
	backend := cpu.New()
	cfg := Config{Layers: 3, InputSize: 4, HiddenSize: 8, Dropout: 0.3, Residual: true, Seed: 77}

	a := newStack(t, cfg)
	b := newStack(t, cfg)

	x := tensor.Ones[float32](tensor.Shape{2, 4}, backend)

	outA, err := a.Step(a.InitHidden(2, backend), x)
	require.NoError(t, err)
	outB, err := b.Step(b.InitHidden(2, backend), x)
	require.NoError(t, err)

	for l := range outA {
		assert.Equal(t, outA[l].Data(), outB[l].Data())
	}
}

func TestStackedTrainEvalToggle(t *testing.T) {
	s := newStack(t, Config{Layers: 2, InputSize: 4, HiddenSize: 8, Dropout: 0.5, Seed: 1})

	assert.True(t, s.Training())
	s.Eval()
	assert.False(t, s.Training())
	s.Train()
	assert.True(t, s.Training())
}

func TestStackedStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()
	cfg := Config{Layers: 2, InputSize: 4, HiddenSize: 6, Seed: 3}

	a := newStack(t, cfg)
	other := cfg
	other.Seed = 999
	b := newStack(t, other)

	require.NoError(t, b.LoadStateDict(a.StateDict()))

	x := tensor.Ones[float32](tensor.Shape{1, 4}, backend)

	outA, err := a.Step(a.InitHidden(1, backend), x)
	require.NoError(t, err)
	outB, err := b.Step(b.InitHidden(1, backend), x)
	require.NoError(t, err)

	for l := range outA {
		assert.InDeltaSlice(t, outA[l].Data(), outB[l].Data(), 1e-6)
	}
}

func TestStackedStepDoesNotMutateHidden(t *testing.T) {
	backend := cpu.New()
	s := newStack(t, Config{Layers: 2, InputSize: 4, HiddenSize: 4, Residual: true, Seed: 9})

	hidden := []*tensor.Tensor[float32, *cpu.CPUBackend]{
		tensor.Full[float32](tensor.Shape{1, 4}, 0.25, backend),
		tensor.Full[float32](tensor.Shape{1, 4}, -0.5, backend),
	}

	x := tensor.Ones[float32](tensor.Shape{1, 4}, backend)
	_, err := s.Step(hidden, x)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, hidden[0].Data())
	assert.Equal(t, []float32{-0.5, -0.5, -0.5, -0.5}, hidden[1].Data())
	assert.Equal(t, []float32{1, 1, 1, 1}, x.Data())
}
