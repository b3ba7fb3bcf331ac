package nn

import (
	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// A Parameter owns its value and a gradient accumulator of the same shape.
// Both outlive any single graph: Bind aliases them into a graph so backward
// accumulates directly into Grad, and the optimizer updates Value in place.
//
// Example:
//
//	weight := nn.NewParameter("layer1.weight", w)
//	g := autodiff.New()
//	wv := weight.Bind(g)
//	// ... build loss from wv, g.Backward(loss)
//	weight.Grad() // d loss / d weight
type Parameter struct {
	name  string
	value *tensor.Array
	grad  *tensor.Array
}

// NewParameter creates a trainable parameter holding value. The parameter
// takes ownership of value; callers must not reuse it.
func NewParameter(name string, value *tensor.Array) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
		grad:  tensor.ZerosLike(value),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter storage.
func (p *Parameter) Value() *tensor.Array {
	return p.value
}

// Grad returns the gradient accumulator.
func (p *Parameter) Grad() *tensor.Array {
	return p.grad
}

// ZeroGrad resets the gradient accumulator to zero.
//
// Call it before each backward pass; backward adds into the accumulator.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}

// Bind records the parameter as a leaf of g that shares its storage.
func (p *Parameter) Bind(g *autodiff.Graph) autodiff.Var {
	return autodiff.Must(g.Bind(p.value, p.grad))
}
