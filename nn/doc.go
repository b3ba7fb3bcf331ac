// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers built on the autodiff Graph.
//
// # Overview
//
// This package contains:
//   - Layers: Linear (W·X + b over column samples)
//   - Activations: None, ReLU, Sigmoid, Tanh
//   - Loss functions: MSE, HalfMSE
//   - Utilities: Sequential, Module interface, Parameter
//   - Initialization: Xavier
//   - Checkpoints: YAML snapshots of parameters
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/minidiff/autodiff"
//	    "github.com/born-ml/minidiff/nn"
//	    "github.com/born-ml/minidiff/tensor"
//	)
//
//	func main() {
//	    l1, _ := nn.NewLinear("layer1", w1, tensor.Zeros(tensor.Shape{2, 1}))
//	    l2, _ := nn.NewLinear("layer2", w2, tensor.Zeros(tensor.Shape{2, 1}))
//	    model := nn.NewSequential(l1, nn.Sigmoid, l2)
//
//	    g := autodiff.New()
//	    z, _ := model.Forward(g, g.Leaf(x))
//	    loss, _ := nn.HalfMSE(g, z, g.Leaf(target))
//	    _ = g.Backward(loss)
//	}
//
// # Parameters
//
// A Parameter owns its value and gradient across graphs. Forward binds the
// storage into the graph it is given, so backward accumulates straight into
// Parameter.Grad. Reset gradients with ZeroGrad before each backward pass.
package nn
