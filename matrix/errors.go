package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is matched by every *ShapeError.
	ErrShapeMismatch = errors.New("matrix: shape mismatch")
	// ErrAliased is returned when an output shares memory with an input
	// that the operation reads after writing.
	ErrAliased = errors.New("matrix: output aliases an input")
)

// ShapeError reports an operand whose shape does not fit the operation.
type ShapeError struct {
	Op      string // operation name, e.g. "Mul"
	Operand string // offending operand, e.g. "out"
	Want    Shape
	Got     Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("matrix: %s: %s has shape %v, want %v", e.Op, e.Operand, e.Got, e.Want)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func checkShape(op, operand string, m *Matrix, want Shape) error {
	if got := m.Shape(); got != want {
		return &ShapeError{Op: op, Operand: operand, Want: want, Got: got}
	}
	return nil
}
