// Package testutil provides testing utilities for nucleus.
//
// This package is intended for use in tests and benchmarks only.
//
// # Arenas
//
//	a := testutil.NewArena(t, 64<<20) // destroyed by t.Cleanup, fatal path panics
//
// # Matrices
//
//	m := testutil.FromRows(a, [][]float32{{1, 2}, {3, 4}})
//	w := testutil.RandomMatrix(a, 128, 64, 42)
//
// # Gradient Checks
//
//	grad := testutil.NumericGrad(loss, params, 1e-3)
package testutil
