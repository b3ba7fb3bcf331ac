package tensor

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Epsilon is the floor applied to the argument of log and to the base of a
// power with a non-constant exponent. Results at or below zero are therefore
// approximations, not exact values.
const Epsilon = 1e-8

// Floor returns max(x, Epsilon).
func Floor(x float64) float64 {
	return math.Max(x, Epsilon)
}

// Array is a dense row-major float64 array of rank 0, 1 or 2.
//
// Arrays are plain storage: they carry no gradient and record no history.
// The autodiff engines wrap them in graph nodes.
type Array struct {
	shape Shape
	data  []float64
}

// New creates an array with the given shape, copying data.
// len(data) must equal shape.NumElements().
func New(shape Shape, data []float64) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrapf(ErrShapeMismatch, "new array: %v", err)
	}
	if len(data) != shape.NumElements() {
		return nil, errors.Wrapf(ErrShapeMismatch, "new array: %d values for shape %v", len(data), shape)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Array{shape: shape.Clone(), data: buf}, nil
}

// Scalar creates a rank-0 array.
func Scalar(v float64) *Array {
	return &Array{shape: Shape{}, data: []float64{v}}
}

// Vector creates a rank-1 array from vs. Like Shape.Validate, it rejects
// zero-length dimensions: Vector panics when vs is empty.
func Vector(vs ...float64) *Array {
	if len(vs) == 0 {
		panic(errors.Wrap(ErrShapeMismatch, "vector: no elements"))
	}
	buf := make([]float64, len(vs))
	copy(buf, vs)
	return &Array{shape: Shape{len(vs)}, data: buf}
}

// Matrix creates a rank-2 array from rows. Ragged rows are a shape mismatch.
func Matrix(rows [][]float64) (*Array, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "matrix: empty rows")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "matrix: row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Array{shape: Shape{len(rows), cols}, data: data}, nil
}

// MustMatrix is like Matrix but panics on ragged input.
// Intended for literals in tests and fixed reference data.
func MustMatrix(rows [][]float64) *Array {
	a, err := Matrix(rows)
	if err != nil {
		panic(err)
	}
	return a
}

// Zeros creates a zero-filled array.
func Zeros(shape Shape) *Array {
	return &Array{shape: shape.Clone(), data: make([]float64, shape.NumElements())}
}

// Ones creates an array filled with ones.
func Ones(shape Shape) *Array {
	return Full(shape, 1)
}

// Full creates an array filled with v.
func Full(shape Shape, v float64) *Array {
	a := Zeros(shape)
	a.Fill(v)
	return a
}

// ZerosLike creates a zero-filled array with a's shape.
func ZerosLike(a *Array) *Array {
	return Zeros(a.shape)
}

// OnesLike creates a ones-filled array with a's shape.
func OnesLike(a *Array) *Array {
	return Ones(a.shape)
}

// Shape returns the array shape. The caller must not modify it.
func (a *Array) Shape() Shape {
	return a.shape
}

// Data returns the underlying row-major storage.
// Writes through the slice mutate the array.
func (a *Array) Data() []float64 {
	return a.data
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// IsScalar reports whether a has rank 0.
func (a *Array) IsScalar() bool {
	return len(a.shape) == 0
}

// Item returns the single element of a one-element array.
func (a *Array) Item() float64 {
	if len(a.data) != 1 {
		panic(fmt.Sprintf("tensor: Item on array of shape %v", a.shape))
	}
	return a.data[0]
}

// At returns the element at the given indices. Rank-0 arrays take no
// indices, vectors one, matrices two.
func (a *Array) At(idx ...int) float64 {
	return a.data[a.offset(idx)]
}

// Set stores v at the given indices.
func (a *Array) Set(v float64, idx ...int) {
	a.data[a.offset(idx)] = v
}

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("tensor: %d indices for shape %v", len(idx), a.shape))
	}
	strides := a.shape.ComputeStrides()
	off := 0
	for i, ix := range idx {
		if ix < 0 || ix >= a.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, a.shape))
		}
		off += ix * strides[i]
	}
	return off
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	buf := make([]float64, len(a.data))
	copy(buf, a.data)
	return &Array{shape: a.shape.Clone(), data: buf}
}

// Fill sets every element to v.
func (a *Array) Fill(v float64) {
	for i := range a.data {
		a.data[i] = v
	}
}

// Zero sets every element to 0.
func (a *Array) Zero() {
	clear(a.data)
}

// CopyFrom overwrites a's elements with src's. Shapes must match.
func (a *Array) CopyFrom(src *Array) error {
	if !a.shape.Equal(src.shape) {
		return &ShapeError{Op: "copy", Left: a.shape, Right: src.shape}
	}
	copy(a.data, src.data)
	return nil
}

// AddInPlace accumulates src into a. Shapes must match exactly: callers
// reduce broadcast gradients with ReduceTo first.
func (a *Array) AddInPlace(src *Array) error {
	if !a.shape.Equal(src.shape) {
		return &ShapeError{Op: "accumulate", Left: a.shape, Right: src.shape}
	}
	for i, v := range src.data {
		a.data[i] += v
	}
	return nil
}

// AXPYInPlace computes a += alpha*x. Shapes must match.
func (a *Array) AXPYInPlace(alpha float64, x *Array) error {
	if !a.shape.Equal(x.shape) {
		return &ShapeError{Op: "axpy", Left: a.shape, Right: x.shape}
	}
	for i, v := range x.data {
		a.data[i] += alpha * v
	}
	return nil
}

// Equal reports whether a and b have equal shapes and elements.
func (a *Array) Equal(b *Array) bool {
	return a.AllClose(b, 0)
}

// AllClose reports whether a and b have equal shapes and every pair of
// elements differs by at most tol.
func (a *Array) AllClose(b *Array, tol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	for i, v := range a.data {
		if math.Abs(v-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// String formats the array like a nested list.
func (a *Array) String() string {
	switch len(a.shape) {
	case 0:
		return fmt.Sprint(a.data[0])
	case 1:
		return fmt.Sprint(a.data)
	}
	rows := make([]string, a.shape[0])
	for i := range rows {
		rows[i] = fmt.Sprint(a.data[i*a.shape[1] : (i+1)*a.shape[1]])
	}
	return "[" + strings.Join(rows, " ") + "]"
}
