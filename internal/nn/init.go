package nn

import (
	"math"
	"math/rand"

	"github.com/klgraham/OpenNMT/internal/tensor"
)

// XavierUniform creates a tensor initialized from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)). Keeps activation variance stable
// through the affine projections.
//
// The randomness source is explicit so construction is reproducible
// from a seed.
func XavierUniform[T tensor.DType, B tensor.Backend](shape tensor.Shape, fanIn, fanOut int, rng *rand.Rand, b B) *tensor.Tensor[T, B] {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T((rng.Float64()*2 - 1) * limit)
	}
	return t
}
