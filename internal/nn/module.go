// Package nn implements neural network building blocks on top of the
// reverse-mode engine in internal/autodiff.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable array with its own gradient accumulator
//   - Linear: Fully connected layer W·X + b over column samples
//   - Activation: None, ReLU, Sigmoid, Tanh
//   - Loss functions: MSE, HalfMSE
//   - Sequential: Container for stacking layers
//   - Checkpoint: YAML snapshot of parameters and training metadata
//
// Modules do not own a graph. Forward records into the graph it is given, so a
// training step builds a fresh graph, binds the parameters into it and
// discards it after the optimizer step.
package nn

import (
	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger networks:
//
//	model := nn.NewSequential(
//	    nn.NewLinear("layer1", w1, b1),
//	    nn.Sigmoid,
//	    nn.NewLinear("layer2", w2, b2),
//	)
type Module interface {
	// Forward records the module's computation on x into g.
	Forward(g *autodiff.Graph, x autodiff.Var) (autodiff.Var, error)

	// Parameters returns all trainable parameters of this module.
	// Modules without parameters return nil.
	Parameters() []*Parameter

	// StateDict returns parameter values keyed by name. The arrays are the
	// live parameter storage, not copies.
	StateDict() map[string]*tensor.Array

	// LoadStateDict copies values from stateDict into the parameters.
	LoadStateDict(stateDict map[string]*tensor.Array) error
}
