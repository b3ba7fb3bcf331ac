package nn

import (
	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: Y = W·X + b
// where:
//   - X is the input with shape [in_features, n], one sample per column
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias column with shape [out_features, 1], broadcast over samples
//   - Y is the output with shape [out_features, n]
//
// Example:
//
//	layer, err := nn.NewLinear("layer1", w, tensor.Zeros(tensor.Shape{2, 1}))
//	g := autodiff.New()
//	y, err := layer.Forward(g, g.Leaf(x))
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features, 1]
}

// NewLinear creates a Linear layer from explicit weights.
//
// The parameters are named "<name>.weight" and "<name>.bias". bias may be
// nil, in which case the layer has no bias term.
func NewLinear(name string, weight, bias *tensor.Array) (*Linear, error) {
	ws := weight.Shape()
	if ws.Rank() != 2 {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "linear %s: weight must be a matrix, got %s", name, ws)
	}
	l := &Linear{
		inFeatures:  ws[1],
		outFeatures: ws[0],
		weight:      NewParameter(name+".weight", weight),
	}
	if bias != nil {
		want := tensor.Shape{ws[0], 1}
		if !bias.Shape().Equal(want) {
			return nil, &tensor.ShapeError{Op: "linear " + name + " bias", Left: want, Right: bias.Shape()}
		}
		l.bias = NewParameter(name+".bias", bias)
	}
	return l, nil
}

// Forward computes W·X + b in g.
func (l *Linear) Forward(g *autodiff.Graph, x autodiff.Var) (autodiff.Var, error) {
	if s := x.Shape(); s.Rank() != 2 || s[0] != l.inFeatures {
		return autodiff.Var{}, &tensor.ShapeError{
			Op:    "linear forward",
			Left:  l.weight.Value().Shape(),
			Right: s,
		}
	}

	y, err := g.MatMul(l.weight.Bind(g), x)
	if err != nil {
		return autodiff.Var{}, err
	}
	if l.bias == nil {
		return y, nil
	}
	return g.Add(y, l.bias.Bind(g))
}

// Parameters returns [weight, bias], or [weight] when the layer has no bias.
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns the layer's parameters under "weight" and "bias".
func (l *Linear) StateDict() map[string]*tensor.Array {
	stateDict := map[string]*tensor.Array{"weight": l.weight.Value()}
	if l.bias != nil {
		stateDict["bias"] = l.bias.Value()
	}
	return stateDict
}

// LoadStateDict copies "weight" and "bias" into the layer.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.Array) error {
	for name, p := range l.StateDict() {
		src, ok := stateDict[name]
		if !ok {
			return errors.Errorf("missing %s in state dict", name)
		}
		if err := p.CopyFrom(src); err != nil {
			return errors.Wrapf(err, "load %s", name)
		}
	}
	return nil
}
