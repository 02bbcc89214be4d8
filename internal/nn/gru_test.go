package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klgraham/OpenNMT/internal/backend/cpu"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

func newCell(t *testing.T, inputSize, hiddenSize int, seed int64) *GRUCell[float32, *cpu.CPUBackend] {
	t.Helper()
	cell, err := NewGRUCell[float32](inputSize, hiddenSize, rand.New(rand.NewSource(seed)), cpu.New())
	require.NoError(t, err)
	return cell
}

func zeroParams[T tensor.DType, B tensor.Backend](m Module[T, B]) {
	for _, p := range m.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = 0
		}
	}
}

func TestGRUCellInvalidConfig(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	var cfgErr *ConfigError

	_, err := NewGRUCell[float32](0, 4, rng, backend)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "inputSize", cfgErr.Field)

	_, err = NewGRUCell[float32](4, 0, rng, backend)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "hiddenSize", cfgErr.Field)
}

func TestGRUCellOutputShape(t *testing.T) {
	cell := newCell(t, 3, 5, 1)
	backend := cpu.New()

	prevH := tensor.Zeros[float32](tensor.Shape{2, 5}, backend)
	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)

	h, err := cell.Forward(prevH, x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 5}, h.Shape())
}

func TestGRUCellShapeErrors(t *testing.T) {
	cell := newCell(t, 3, 5, 1)
	backend := cpu.New()

	var shapeErr *ShapeError

	// Wrong input width.
	_, err := cell.Forward(
		tensor.Zeros[float32](tensor.Shape{2, 5}, backend),
		tensor.Ones[float32](tensor.Shape{2, 4}, backend),
	)
	require.ErrorAs(t, err, &shapeErr)

	// Wrong hidden width.
	_, err = cell.Forward(
		tensor.Zeros[float32](tensor.Shape{2, 6}, backend),
		tensor.Ones[float32](tensor.Shape{2, 3}, backend),
	)
	require.ErrorAs(t, err, &shapeErr)

	// Batch mismatch.
	_, err = cell.Forward(
		tensor.Zeros[float32](tensor.Shape{4, 5}, backend),
		tensor.Ones[float32](tensor.Shape{2, 3}, backend),
	)
	require.ErrorAs(t, err, &shapeErr)

	// 1D input.
	_, err = cell.Forward(
		tensor.Zeros[float32](tensor.Shape{2, 5}, backend),
		tensor.Ones[float32](tensor.Shape{3}, backend),
	)
	require.ErrorAs(t, err, &shapeErr)
}

// With all weights and biases zero, both gates sit at σ(0) = 0.5 and
// the candidate at tanh(0) = 0, so the next state is exactly half the
// previous one.
func TestGRUCellZeroWeightsHalveState(t *testing.T) {
	cell := newCell(t, 3, 4, 1)
	zeroParams[float32, *cpu.CPUBackend](cell)
	backend := cpu.New()

	prevH, err := tensor.FromSlice([]float32{0.8, -0.4, 0.2, 1.0}, tensor.Shape{1, 4}, backend)
	require.NoError(t, err)
	x := tensor.Ones[float32](tensor.Shape{1, 3}, backend)

	h, err := cell.Forward(prevH, x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.4, -0.2, 0.1, 0.5}, h.Data(), 1e-6)
}

// A saturated update gate (huge positive bias) copies the previous
// state through unchanged; a saturated-low gate adopts the candidate.
func TestGRUCellUpdateGateSaturation(t *testing.T) {
	backend := cpu.New()
	hiddenSize := 4

	prevHData := []float32{0.9, -0.7, 0.3, 0.1}

	t.Run("gate high keeps state", func(t *testing.T) {
		cell := newCell(t, 2, hiddenSize, 1)
		zeroParams[float32, *cpu.CPUBackend](cell)
		bias := cell.InputProjection().Bias().Tensor().Data()
		for j := hiddenSize; j < 2*hiddenSize; j++ {
			bias[j] = 50 // update-gate third
		}

		prevH, err := tensor.FromSlice(prevHData, tensor.Shape{1, hiddenSize}, backend)
		require.NoError(t, err)
		x := tensor.Ones[float32](tensor.Shape{1, 2}, backend)

		h, err := cell.Forward(prevH, x)
		require.NoError(t, err)
		assert.InDeltaSlice(t, prevHData, h.Data(), 1e-6)
	})

	t.Run("gate low adopts candidate", func(t *testing.T) {
		cell := newCell(t, 2, hiddenSize, 1)
		zeroParams[float32, *cpu.CPUBackend](cell)
		bias := cell.InputProjection().Bias().Tensor().Data()
		for j := hiddenSize; j < 2*hiddenSize; j++ {
			bias[j] = -50
		}

		prevH, err := tensor.FromSlice(prevHData, tensor.Shape{1, hiddenSize}, backend)
		require.NoError(t, err)
		x := tensor.Ones[float32](tensor.Shape{1, 2}, backend)

		// Candidate is tanh(0) = 0 with zero weights.
		h, err := cell.Forward(prevH, x)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0, 0, 0, 0}, h.Data(), 1e-6)
	})
}

// With zero weights and hand-picked input-projection biases the gates
// have closed forms: r = σ(b_r), i = σ(b_i), n = tanh(b_n), so the
// update algebra can be checked element by element in both of its
// equivalent forms, h' = n + i(h−n) = i·h + (1−i)·n.
func TestGRUCellGateAlgebraClosedForm(t *testing.T) {
	backend := cpu.New()
	hiddenSize := 2

	cell := newCell(t, 2, hiddenSize, 1)
	zeroParams[float32, *cpu.CPUBackend](cell)

	bias := cell.InputProjection().Bias().Tensor().Data()
	bR := []float64{0.3, -0.8}
	bI := []float64{1.1, -0.2}
	bN := []float64{-0.5, 0.7}
	for j := 0; j < hiddenSize; j++ {
		bias[j] = float32(bR[j])
		bias[hiddenSize+j] = float32(bI[j])
		bias[2*hiddenSize+j] = float32(bN[j])
	}

	prevHData := []float64{0.6, -0.3}
	prevH, err := tensor.FromSlice([]float32{0.6, -0.3}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)
	x := tensor.Zeros[float32](tensor.Shape{1, 2}, backend)

	h, err := cell.Forward(prevH, x)
	require.NoError(t, err)

	sigmoid := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	for j := 0; j < hiddenSize; j++ {
		i := sigmoid(bI[j])
		n := math.Tanh(bN[j])
		want := i*prevHData[j] + (1-i)*n
		assert.InDelta(t, want, float64(h.Data()[j]), 1e-6)
	}
}

// The next state interpolates between the candidate (in (-1, 1)) and
// the previous state, so starting from zeros the hidden state can never
// leave (-1, 1).
func TestGRUCellStateStaysBounded(t *testing.T) {
	cell := newCell(t, 6, 8, 42)
	backend := cpu.New()

	rng := rand.New(rand.NewSource(99))
	h := tensor.Zeros[float32](tensor.Shape{3, 8}, backend)

	for step := 0; step < 50; step++ {
		x := tensor.Randn[float32](tensor.Shape{3, 6}, rng, backend)
		next, err := cell.Forward(h, x)
		require.NoError(t, err)
		h = next

		for _, v := range h.Data() {
			require.False(t, math.IsNaN(float64(v)))
			require.Less(t, math.Abs(float64(v)), 1.0)
		}
	}
}

// Forward must treat the previous hidden state as read-only.
func TestGRUCellDoesNotMutateInputs(t *testing.T) {
	cell := newCell(t, 3, 4, 1)
	backend := cpu.New()

	prevH, err := tensor.FromSlice([]float32{0.1, 0.2, 0.3, 0.4}, tensor.Shape{1, 4}, backend)
	require.NoError(t, err)
	x, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)

	_, err = cell.Forward(prevH, x)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, prevH.Data())
	assert.Equal(t, []float32{1, 2, 3}, x.Data())
}

func TestGRUCellDeterministic(t *testing.T) {
	backend := cpu.New()

	a := newCell(t, 3, 4, 7)
	b := newCell(t, 3, 4, 7)

	prevH := tensor.Zeros[float32](tensor.Shape{2, 4}, backend)
	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)

	ha, err := a.Forward(prevH, x)
	require.NoError(t, err)
	hb, err := b.Forward(prevH, x)
	require.NoError(t, err)

	assert.Equal(t, ha.Data(), hb.Data())
}

func TestGRUCellStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()

	a := newCell(t, 3, 4, 7)
	b := newCell(t, 3, 4, 1234)

	require.NoError(t, b.LoadStateDict(a.StateDict()))

	prevH := tensor.Zeros[float32](tensor.Shape{1, 4}, backend)
	x := tensor.Ones[float32](tensor.Shape{1, 3}, backend)

	ha, err := a.Forward(prevH, x)
	require.NoError(t, err)
	hb, err := b.Forward(prevH, x)
	require.NoError(t, err)

	assert.InDeltaSlice(t, ha.Data(), hb.Data(), 1e-6)
}
