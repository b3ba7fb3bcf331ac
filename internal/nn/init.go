package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/minidiff/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// r supplies the randomness so runs are reproducible from a seed.
func Xavier(fanIn, fanOut int, shape tensor.Shape, r *rand.Rand) *tensor.Array {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = (r.Float64()*2.0 - 1.0) * bound
	}
	return t
}

// NewLinearXavier creates a Linear layer with Xavier-initialized weights and
// a zero bias column.
func NewLinearXavier(name string, inFeatures, outFeatures int, r *rand.Rand) *Linear {
	w := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, r)
	l, err := NewLinear(name, w, tensor.Zeros(tensor.Shape{outFeatures, 1}))
	if err != nil {
		panic(err) // shapes are constructed above
	}
	return l
}
