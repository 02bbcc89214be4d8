package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klgraham/OpenNMT/internal/backend/cpu"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

func TestDropoutInvalidProbability(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	var cfgErr *ConfigError

	_, err := NewDropout[float32](-0.1, rng, backend)
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewDropout[float32](1.0, rng, backend)
	require.ErrorAs(t, err, &cfgErr)
}

func TestDropoutEvalIsIdentity(t *testing.T) {
	backend := cpu.New()

	d, err := NewDropout[float32](0.5, rand.New(rand.NewSource(1)), backend)
	require.NoError(t, err)
	d.Eval()

	x := tensor.Ones[float32](tensor.Shape{4, 4}, backend)
	y := d.Forward(x)

	assert.Same(t, x, y)
}

func TestDropoutZeroProbabilityIsIdentity(t *testing.T) {
	backend := cpu.New()

	d, err := NewDropout[float32](0, rand.New(rand.NewSource(1)), backend)
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{4}, backend)
	assert.Same(t, x, d.Forward(x))
}

func TestDropoutTrainingScalesSurvivors(t *testing.T) {
	backend := cpu.New()

	d, err := NewDropout[float32](0.5, rand.New(rand.NewSource(3)), backend)
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{100}, backend)
	y := d.Forward(x)

	zeros, survivors := 0, 0
	for _, v := range y.Data() {
		switch v {
		case 0:
			zeros++
		case 2: // 1 / (1 - 0.5)
			survivors++
		default:
			t.Fatalf("unexpected value %v, want 0 or 2", v)
		}
	}
	assert.Equal(t, 100, zeros+survivors)
	assert.Greater(t, zeros, 0)
	assert.Greater(t, survivors, 0)
}

func TestDropoutExpectationPreserved(t *testing.T) {
	backend := cpu.New()

	d, err := NewDropout[float32](0.3, rand.New(rand.NewSource(7)), backend)
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{10000}, backend)
	y := d.Forward(x)

	sum := 0.0
	for _, v := range y.Data() {
		sum += float64(v)
	}
	mean := sum / 10000
	assert.InDelta(t, 1.0, mean, 0.05)
}

func TestDropoutSeedReproducible(t *testing.T) {
	backend := cpu.New()

	d1, err := NewDropout[float32](0.4, rand.New(rand.NewSource(11)), backend)
	require.NoError(t, err)
	d2, err := NewDropout[float32](0.4, rand.New(rand.NewSource(11)), backend)
	require.NoError(t, err)

	x1 := tensor.Ones[float32](tensor.Shape{64}, backend)
	x2 := tensor.Ones[float32](tensor.Shape{64}, backend)

	assert.Equal(t, d1.Forward(x1).Data(), d2.Forward(x2).Data())
}
