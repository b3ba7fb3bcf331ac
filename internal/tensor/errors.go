package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	// ErrShapeMismatch reports operands whose shapes are incompatible for an
	// operation: not broadcastable for element-wise ops, or disagreeing inner
	// dimensions for a matrix product.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNumericDomain reports an argument outside an operation's mathematical
	// domain, such as the log of a non-positive number.
	ErrNumericDomain = errors.New("numeric domain error")
)

// ShapeError provides the operation and operand shapes of a shape mismatch.
type ShapeError struct {
	Op    string // Operation that rejected the operands (e.g. "add", "matmul")
	Left  Shape  // First operand shape
	Right Shape  // Second operand shape (nil for single-operand checks)
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, ErrShapeMismatch, e.Left)
	}
	return fmt.Sprintf("%s: %s: %v vs %v", e.Op, ErrShapeMismatch, e.Left, e.Right)
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// withOp returns a copy of err relabelled with op when err is a *ShapeError.
func withOp(err error, op string) error {
	var se *ShapeError
	if errors.As(err, &se) {
		return &ShapeError{Op: op, Left: se.Left, Right: se.Right}
	}
	return err
}
