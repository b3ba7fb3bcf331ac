// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and value.
func NewParameter(name string, value *tensor.Array) *Parameter {
	return nn.NewParameter(name, value)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a linear layer from explicit weights and an optional
// bias column.
//
// Example:
//
//	layer, err := nn.NewLinear("fc", w, tensor.Zeros(tensor.Shape{2, 1}))
func NewLinear(name string, weight, bias *tensor.Array) (*Linear, error) {
	return nn.NewLinear(name, weight, bias)
}

// NewLinearXavier creates a linear layer with Xavier-initialized weights and
// a zero bias.
func NewLinearXavier(name string, inFeatures, outFeatures int, r *rand.Rand) *Linear {
	return nn.NewLinearXavier(name, inFeatures, outFeatures, r)
}

// Xavier returns an array drawn from the Xavier/Glorot uniform distribution.
func Xavier(fanIn, fanOut int, shape tensor.Shape, r *rand.Rand) *tensor.Array {
	return nn.Xavier(fanIn, fanOut, shape, r)
}

// Sequential chains modules.
type Sequential = nn.Sequential

// NewSequential creates a Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Activations

// Activation is an element-wise non-linearity.
type Activation = nn.Activation

// Supported activations.
const (
	None    = nn.None
	ReLU    = nn.ReLU
	Sigmoid = nn.Sigmoid
	Tanh    = nn.Tanh
)

// ErrUnknownActivation is returned for unrecognized activation names.
var ErrUnknownActivation = nn.ErrUnknownActivation

// ParseActivation maps a name such as "sigmoid" to its Activation.
func ParseActivation(name string) (Activation, error) {
	return nn.ParseActivation(name)
}

// Loss functions

// MSE records mean((pred - target)²).
func MSE(g *autodiff.Graph, pred, target autodiff.Var) (autodiff.Var, error) {
	return nn.MSE(g, pred, target)
}

// HalfMSE records mean(0.5·(pred - target)²).
func HalfMSE(g *autodiff.Graph, pred, target autodiff.Var) (autodiff.Var, error) {
	return nn.HalfMSE(g, pred, target)
}

// Checkpoints

// Checkpoint is a YAML snapshot of a module's parameters and training metadata.
type Checkpoint = nn.Checkpoint

// ErrNotCheckpoint is returned when a file does not hold a checkpoint.
var ErrNotCheckpoint = nn.ErrNotCheckpoint

// LoadCheckpoint reads a checkpoint and loads it into model.
func LoadCheckpoint(path string, model Module) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, model)
}
