package nn

import (
	"strings"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
)

// ErrUnknownActivation is returned by ParseActivation for unrecognized names.
var ErrUnknownActivation = errors.New("unknown activation")

// Activation is an element-wise non-linearity applied between layers.
//
// Activation implements Module with no parameters, so it can sit inside a
// Sequential:
//
//	model := nn.NewSequential(layer1, nn.Sigmoid, layer2)
type Activation uint8

// Supported activations.
const (
	None    Activation = iota // Identity: f(x) = x
	ReLU                      // f(x) = max(0, x)
	Sigmoid                   // σ(x) = 1 / (1 + exp(-x))
	Tanh                      // f(x) = tanh(x)
)

var activationNames = [...]string{
	None:    "none",
	ReLU:    "relu",
	Sigmoid: "sigmoid",
	Tanh:    "tanh",
}

// ParseActivation maps a name such as "sigmoid" to its Activation. Matching
// is case-insensitive; the empty string means None.
func ParseActivation(name string) (Activation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None, nil
	}
	for a, n := range activationNames {
		if n == name {
			return Activation(a), nil
		}
	}
	return None, errors.Wrapf(ErrUnknownActivation, "%q", name)
}

// String returns the activation's name.
func (a Activation) String() string {
	if int(a) < len(activationNames) {
		return activationNames[a]
	}
	return "unknown"
}

// Apply records the activation of v in g. None returns v unchanged.
func (a Activation) Apply(g *autodiff.Graph, v autodiff.Var) (autodiff.Var, error) {
	switch a {
	case None:
		return v, nil
	case ReLU:
		return g.ReLU(v)
	case Sigmoid:
		return g.Sigmoid(v)
	case Tanh:
		return g.Tanh(v)
	default:
		return autodiff.Var{}, errors.Wrapf(ErrUnknownActivation, "%d", uint8(a))
	}
}

// Forward implements Module.
func (a Activation) Forward(g *autodiff.Graph, x autodiff.Var) (autodiff.Var, error) {
	return a.Apply(g, x)
}

// Parameters returns nil (activations have no trainable parameters).
func (a Activation) Parameters() []*Parameter {
	return nil
}

// StateDict returns nil.
func (a Activation) StateDict() map[string]*tensor.Array {
	return nil
}

// LoadStateDict is a no-op.
func (a Activation) LoadStateDict(map[string]*tensor.Array) error {
	return nil
}
