package testutil

import (
	"fmt"
	"testing"

	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/matrix"
	"github.com/hupe1980/nucleus/random"
)

// PanicOnFatal is an arena.FatalHandler that panics with the error so tests
// can recover it instead of exiting the process.
func PanicOnFatal(err error) { panic(err) }

// NewArena creates an arena with the default commit granularity whose fatal
// path panics. It is destroyed when the test finishes.
func NewArena(tb testing.TB, reserve int, opts ...arena.Option) *arena.Arena {
	tb.Helper()
	opts = append([]arena.Option{arena.WithFatalHandler(PanicOnFatal)}, opts...)
	a, err := arena.TryNew(reserve, 0, opts...)
	if err != nil {
		tb.Fatalf("testutil: create arena: %v", err)
	}
	tb.Cleanup(func() { _ = a.Destroy() })
	return a
}

// FromRows allocates a matrix holding rows. All rows must have the same
// length.
func FromRows(a *arena.Arena, rows [][]float32) *matrix.Matrix {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := matrix.New(a, len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			panic(fmt.Sprintf("testutil: row %d has %d values, want %d", i, len(r), cols))
		}
		copy(m.Row(i), r)
	}
	return m
}

// RandomMatrix allocates a rows×cols matrix of standard normal values drawn
// from a stream seeded with seed.
func RandomMatrix(a *arena.Arena, rows, cols int, seed uint64) *matrix.Matrix {
	m := matrix.New(a, rows, cols)
	matrix.FillNormal(m, random.New(seed, 1), 0, 1)
	return m
}

// NumericGrad estimates d f / d x[i] for every i by central differences.
// x is perturbed in place and restored.
func NumericGrad(f func() float32, x []float32, h float32) []float32 {
	grad := make([]float32, len(x))
	for i := range x {
		orig := x[i]

		x[i] = orig + h
		fp := float64(f())
		x[i] = orig - h
		fm := float64(f())
		x[i] = orig

		grad[i] = float32((fp - fm) / (2 * float64(h)))
	}
	return grad
}
