// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense float64 arrays for the minidiff engines.
//
// # Overview
//
// Arrays are the values and gradients carried by autodiff graph nodes. This
// package provides:
//   - Scalars, vectors and matrices (rank 0 to 2) in row-major order
//   - NumPy-style broadcasting for element-wise operations
//   - Gradient reduction back to a broadcast operand's shape (ReduceTo)
//   - Matrix product and transpose
//
// # Basic Usage
//
//	import "github.com/born-ml/minidiff/tensor"
//
//	func main() {
//	    w := tensor.MustMatrix([][]float64{{1, 2}, {3, 4}})
//	    b := tensor.MustMatrix([][]float64{{1}, {-1}})
//
//	    y, _ := tensor.MatMul(w, w)
//	    y, _ = tensor.Add(y, b) // b is broadcast over columns
//	}
//
// # Broadcasting
//
// Two shapes are compatible when, aligned from the right, each pair of
// dimensions is equal or one of them is 1. A scalar is compatible with every
// shape. Incompatible operands return an error matching ErrShapeMismatch.
//
// # Numerical Domain
//
// Log and non-integer powers floor their argument at Epsilon (1e-8) instead
// of failing. This is an approximation near zero, not an exact result.
package tensor
