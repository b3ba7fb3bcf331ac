package train

import (
	"math/rand/v2"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/tensor"
)

// Model is the two-layer network Z = W2·f(W1·X + b1) + b2.
//
// Samples are columns of X. Model owns its parameters; each training step
// binds them into a fresh graph and the optimizer updates them in place.
type Model struct {
	Layer1     *nn.Linear
	Layer2     *nn.Linear
	Activation nn.Activation

	net *nn.Sequential
}

// NewModel wires two layers with an activation between them.
func NewModel(layer1, layer2 *nn.Linear, act nn.Activation) *Model {
	return &Model{
		Layer1:     layer1,
		Layer2:     layer2,
		Activation: act,
		net:        nn.NewSequential(layer1, act, layer2),
	}
}

// NewTwoLayerModel returns the reference model: a 3→2 layer and a 2→2 layer
// with fixed weights and zero biases.
func NewTwoLayerModel(act nn.Activation) *Model {
	l1, err := nn.NewLinear("layer1",
		tensor.MustMatrix([][]float64{
			{0.1, -0.2, 0.3},
			{-0.3, 0.2, 0.1},
		}),
		tensor.Zeros(tensor.Shape{2, 1}),
	)
	if err != nil {
		panic(err)
	}
	l2, err := nn.NewLinear("layer2",
		tensor.MustMatrix([][]float64{
			{0.2, -0.1},
			{-0.2, 0.3},
		}),
		tensor.Zeros(tensor.Shape{2, 1}),
	)
	if err != nil {
		panic(err)
	}
	return NewModel(l1, l2, act)
}

// NewRandomModel returns a model of the reference architecture with
// Xavier-initialized weights drawn from seed.
func NewRandomModel(act nn.Activation, seed uint64) *Model {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return NewModel(
		nn.NewLinearXavier("layer1", 3, 2, r),
		nn.NewLinearXavier("layer2", 2, 2, r),
		act,
	)
}

// Forward records the model's output for x in g.
func (m *Model) Forward(g *autodiff.Graph, x autodiff.Var) (autodiff.Var, error) {
	return m.net.Forward(g, x)
}

// Parameters returns layer1's weight and bias followed by layer2's.
func (m *Model) Parameters() []*nn.Parameter {
	return m.net.Parameters()
}

// StateDict returns the parameters keyed by layer index.
func (m *Model) StateDict() map[string]*tensor.Array {
	return m.net.StateDict()
}

// LoadStateDict restores parameters saved by StateDict.
func (m *Model) LoadStateDict(stateDict map[string]*tensor.Array) error {
	return m.net.LoadStateDict(stateDict)
}

// ReferenceInputs returns the 3×3 input matrix, one sample per column.
func ReferenceInputs() *tensor.Array {
	return tensor.MustMatrix([][]float64{
		{1.0, 0.5, -1.0},
		{0.0, 1.0, 0.5},
		{1.5, -0.5, 1.0},
	})
}

// ReferenceTargets returns the 2×3 target matrix.
func ReferenceTargets() *tensor.Array {
	return tensor.MustMatrix([][]float64{
		{0.5, 0.8, 0.3},
		{1.0, 0.4, 0.9},
	})
}

// ModelFor builds the model cfg describes: the reference weights when
// cfg.Seed is 0, Xavier-initialized weights otherwise.
func ModelFor(cfg Config) (*Model, error) {
	act, err := nn.ParseActivation(cfg.Activation)
	if err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		return NewTwoLayerModel(act), nil
	}
	return NewRandomModel(act, cfg.Seed), nil
}
