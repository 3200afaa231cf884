// Package math32 provides float32 vector kernels for the matrix package.
//
// Every kernel processes elements in increasing index order and rounds each
// product to float32 before accumulating, so results are reproducible
// across architectures (no fused multiply-add).
package math32

import "math"

// Dot returns acc + Σ a[i]*b[i], accumulated in index order.
// b must be at least as long as a.
func Dot(acc float32, a, b []float32) float32 {
	b = b[:len(a)]
	for i := range a {
		acc += float32(a[i] * b[i])
	}
	return acc
}

// Axpy computes y[i] += alpha*x[i]. x must be at least as long as y.
func Axpy(alpha float32, x, y []float32) {
	x = x[:len(y)]

	i := 0
	for ; i+4 <= len(y); i += 4 {
		y[i] += float32(alpha * x[i])
		y[i+1] += float32(alpha * x[i+1])
		y[i+2] += float32(alpha * x[i+2])
		y[i+3] += float32(alpha * x[i+3])
	}
	for ; i < len(y); i++ {
		y[i] += float32(alpha * x[i])
	}
}

// AxpyStride computes y[i] += alpha*x[i*stride].
func AxpyStride(alpha float32, x []float32, stride int, y []float32) {
	for i := range y {
		y[i] += float32(alpha * x[i*stride])
	}
}

// Scale multiplies every element of a by s.
func Scale(a []float32, s float32) {
	for i := range a {
		a[i] *= s
	}
}

// Add computes dst[i] = a[i] + b[i]. dst may alias a or b.
func Add(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Sub computes dst[i] = a[i] - b[i]. dst may alias a or b.
func Sub(dst, a, b []float32) {
	a, b = a[:len(dst)], b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// Sum returns the sum of a in index order.
func Sum(a []float32) float32 {
	var s float32
	for _, v := range a {
		s += v
	}
	return s
}

// Max returns the largest element of a, or -Inf for an empty slice.
// NaN elements never compare greater and are skipped.
func Max(a []float32) float32 {
	m := float32(math.Inf(-1))
	for _, v := range a {
		if v > m {
			m = v
		}
	}
	return m
}

// Fill sets every element of a to v.
func Fill(a []float32, v float32) {
	if v == 0 {
		clear(a)
		return
	}
	for i := range a {
		a[i] = v
	}
}
