// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation engines.
//
// Three engines are available:
//   - Graph: reverse-mode over tensor.Array values with broadcasting
//   - Tape: reverse-mode over single float64 values
//   - Dual: forward-mode dual numbers, one directional derivative per pass
//
// Example:
//
//	import (
//	    "github.com/born-ml/minidiff/autodiff"
//	    "github.com/born-ml/minidiff/tensor"
//	)
//
//	func main() {
//	    g := autodiff.New()
//	    x := g.Leaf(tensor.Scalar(2))
//	    s, _ := g.Add(x, g.Const(2))
//	    y, _ := g.PowConst(s, 2)
//
//	    _ = g.Backward(y)
//	    x.Grad().Item() // 8
//	}
package autodiff

import (
	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/dual"
	"github.com/born-ml/minidiff/internal/scalar"
)

// Graph records tensor operations for reverse-mode differentiation.
type Graph = autodiff.Graph

// Var is a handle to a node of a Graph.
type Var = autodiff.Var

// Kind identifies the operation that produced a node.
type Kind = autodiff.Kind

// Option configures a Graph.
type Option = autodiff.Option

// New creates an empty graph.
//
// Example:
//
//	g := autodiff.New(autodiff.WithStrictDomain())
func New(opts ...Option) *Graph {
	return autodiff.New(opts...)
}

// WithCapacity pre-allocates room for n nodes.
func WithCapacity(n int) Option {
	return autodiff.WithCapacity(n)
}

// WithStrictDomain makes log and power fail with tensor.ErrNumericDomain
// instead of flooring out-of-domain arguments.
func WithStrictDomain() Option {
	return autodiff.WithStrictDomain()
}

// Must panics if err is non-nil and returns v otherwise.
func Must(v Var, err error) Var {
	return autodiff.Must(v, err)
}

// Tape records scalar operations for reverse-mode differentiation.
type Tape = scalar.Tape

// Value is a handle to a node of a Tape.
type Value = scalar.Value

// NewTape creates an empty scalar tape.
func NewTape() *Tape {
	return scalar.NewTape()
}

// Dual is a forward-mode dual number.
type Dual = dual.Number

// Variable returns the dual number for the input being differentiated.
func Variable(x float64) Dual {
	return dual.Variable(x)
}

// Constant returns a dual number with zero derivative.
func Constant(x float64) Dual {
	return dual.Constant(x)
}

// Derivative evaluates f at x in forward mode and returns f(x) and f'(x).
func Derivative(f func(Dual) Dual, x float64) (float64, float64) {
	return dual.Derivative(f, x)
}
