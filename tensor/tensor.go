// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/minidiff/internal/tensor"
)

// Type aliases for public API

// Shape represents the dimensions of an array.
// Example: Shape{2, 3} is a 2×3 matrix, Shape{} a scalar.
type Shape = tensor.Shape

// Array is a dense float64 array of rank 0, 1 or 2.
type Array = tensor.Array

// ShapeError provides the operation and operand shapes of a shape mismatch.
type ShapeError = tensor.ShapeError

// Errors.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrNumericDomain = tensor.ErrNumericDomain
)

// Epsilon is the floor applied to log arguments and non-integer power bases.
const Epsilon = tensor.Epsilon

// MaxRank is the highest supported rank.
const MaxRank = tensor.MaxRank

// New creates an array with the given shape from a copy of data.
func New(shape Shape, data []float64) (*Array, error) {
	return tensor.New(shape, data)
}

// Scalar creates a rank-0 array.
func Scalar(v float64) *Array {
	return tensor.Scalar(v)
}

// Vector creates a rank-1 array. It panics when vs is empty.
func Vector(vs ...float64) *Array {
	return tensor.Vector(vs...)
}

// Matrix creates a rank-2 array from rows. Ragged rows are an error.
func Matrix(rows [][]float64) (*Array, error) {
	return tensor.Matrix(rows)
}

// MustMatrix is like Matrix but panics on error.
func MustMatrix(rows [][]float64) *Array {
	return tensor.MustMatrix(rows)
}

// Zeros creates an array filled with zeros.
func Zeros(shape Shape) *Array {
	return tensor.Zeros(shape)
}

// Ones creates an array filled with ones.
func Ones(shape Shape) *Array {
	return tensor.Ones(shape)
}

// Full creates an array filled with v.
func Full(shape Shape, v float64) *Array {
	return tensor.Full(shape, v)
}

// Add returns a + b with broadcasting.
func Add(a, b *Array) (*Array, error) {
	return tensor.Add(a, b)
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Array) (*Array, error) {
	return tensor.Sub(a, b)
}

// Mul returns the element-wise product with broadcasting.
func Mul(a, b *Array) (*Array, error) {
	return tensor.Mul(a, b)
}

// Div returns the element-wise quotient with broadcasting.
func Div(a, b *Array) (*Array, error) {
	return tensor.Div(a, b)
}

// MatMul returns the matrix product a·b.
func MatMul(a, b *Array) (*Array, error) {
	return tensor.MatMul(a, b)
}

// Transpose returns the transpose of a matrix.
func Transpose(a *Array) *Array {
	return tensor.Transpose(a)
}

// BroadcastShapes returns the broadcast shape of a and b, and whether either
// operand needs broadcasting.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// ReduceTo sums g over the axes that were broadcast to produce it from an
// operand of shape target.
func ReduceTo(g *Array, target Shape) (*Array, error) {
	return tensor.ReduceTo(g, target)
}
