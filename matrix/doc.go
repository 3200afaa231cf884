// Package matrix implements a dense, row-major float32 matrix whose storage
// lives in an arena, plus the arithmetic, activation, loss and gradient
// kernels of a small neural-network forward/backward pass.
//
// # Ownership
//
// A *Matrix is a shape plus a view of arena memory. It has no destructor:
// destroying (or resetting) the arena invalidates every matrix created from
// it at once.
//
//	a := arena.New(1<<30, 1<<20)
//	defer a.Destroy()
//
//	w := matrix.New(a, 784, 128)
//	matrix.Xavier(w, random.New(1, 1))
//
// # Failure Model
//
// Operations that take several operands validate every shape before they
// write anything. A mismatch returns a *ShapeError (errors.Is
// ErrShapeMismatch) and leaves the output untouched. There is no
// broadcasting.
//
// # Aliasing
//
// Elementwise operations allow the output to be one of the inputs
// (in-place). Mul does not: its output must not share memory with either
// operand.
//
// # Gradients
//
// Functions named *AddGrad and *Backward accumulate into their output
// (out += ...) so gradients can be summed across a batch. Clear the output
// first for an overwrite.
//
// # Determinism
//
// Kernels are single-threaded and visit elements in a fixed order with
// float32 accumulation, so a given input always produces bit-identical
// output.
package matrix
