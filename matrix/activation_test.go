package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReLU(t *testing.T) {
	a := newTestArena(t)

	in := fromValues(a, 1, 4, -1, 0, 2, -3)
	out := New(a, 1, 4)
	require.NoError(t, ReLU(out, in))
	assert.Equal(t, []float32{0, 0, 2, 0}, out.Data())

	t.Run("in place", func(t *testing.T) {
		require.NoError(t, ReLU(in, in))
		assert.Equal(t, []float32{0, 0, 2, 0}, in.Data())
	})

	t.Run("NaN propagates", func(t *testing.T) {
		in := fromValues(a, 1, 2, float32(math.NaN()), -1)
		require.NoError(t, ReLU(in, in))
		assert.True(t, math.IsNaN(float64(in.At(0, 0))))
	})

	t.Run("mismatch", func(t *testing.T) {
		out := filled(a, 4, 1, 42)
		require.ErrorIs(t, ReLU(out, fromValues(a, 1, 4)), ErrShapeMismatch)
		assert.Equal(t, float32(168), Sum(out))
	})
}

func TestSoftmax(t *testing.T) {
	a := newTestArena(t)

	t.Run("uniform", func(t *testing.T) {
		in := fromValues(a, 1, 3, 0, 0, 0)
		out := New(a, 1, 3)
		require.NoError(t, Softmax(out, in))
		for _, v := range out.Data() {
			assert.InDelta(t, 1.0/3, v, 1e-6)
		}
	})

	t.Run("stable for large inputs", func(t *testing.T) {
		in := fromValues(a, 1, 2, 1000, 0)
		out := New(a, 1, 2)
		require.NoError(t, Softmax(out, in))
		for _, v := range out.Data() {
			assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
		}
		assert.InDelta(t, 1, out.At(0, 0), 1e-6)
		assert.InDelta(t, 0, out.At(0, 1), 1e-6)
	})

	t.Run("row wise", func(t *testing.T) {
		in := fromValues(a, 2, 3, 1, 2, 3, -5, 0, 5)
		require.NoError(t, Softmax(in, in))

		for r := 0; r < 2; r++ {
			var sum float32
			for _, v := range in.Row(r) {
				assert.Greater(t, v, float32(0))
				sum += v
			}
			assert.InDelta(t, 1, sum, 1e-6)
		}
		assert.InDelta(t, 0.09003057, in.At(0, 0), 1e-6)
		assert.InDelta(t, 0.66524096, in.At(0, 2), 1e-6)
	})

	t.Run("shift invariant", func(t *testing.T) {
		x := fromValues(a, 1, 3, 1, 2, 3)
		y := fromValues(a, 1, 3, 101, 102, 103)
		require.NoError(t, Softmax(x, x))
		require.NoError(t, Softmax(y, y))
		assert.InDeltaSlice(t, x.Data(), y.Data(), 1e-6)
	})

	t.Run("mismatch", func(t *testing.T) {
		out := filled(a, 3, 1, 42)
		require.ErrorIs(t, Softmax(out, New(a, 1, 3)), ErrShapeMismatch)
		assert.Equal(t, float32(126), Sum(out))
	})
}

func TestReLUAddGrad(t *testing.T) {
	a := newTestArena(t)

	in := fromValues(a, 1, 4, -1, 0, 2, 3)
	out := fromValues(a, 1, 4, 0.5, 0.5, 0.5, 0.5)

	require.NoError(t, ReLUAddGrad(out, in))
	assert.Equal(t, []float32{0.5, 0.5, 1.5, 1.5}, out.Data())

	require.NoError(t, ReLUAddGrad(out, in))
	assert.Equal(t, []float32{0.5, 0.5, 2.5, 2.5}, out.Data())

	require.ErrorIs(t, ReLUAddGrad(New(a, 2, 2), in), ErrShapeMismatch)
}

func TestReLUBackward(t *testing.T) {
	a := newTestArena(t)

	in := fromValues(a, 1, 4, -1, 0, 2, 3)
	grad := fromValues(a, 1, 4, 10, 20, 30, 40)
	out := fromValues(a, 1, 4, 1, 1, 1, 1)

	require.NoError(t, ReLUBackward(out, in, grad))
	assert.Equal(t, []float32{1, 1, 31, 41}, out.Data())

	require.ErrorIs(t, ReLUBackward(out, in, New(a, 4, 1)), ErrShapeMismatch)
	require.ErrorIs(t, ReLUBackward(New(a, 4, 1), in, grad), ErrShapeMismatch)
	assert.Equal(t, []float32{1, 1, 31, 41}, out.Data())
}

func TestSoftmaxAddGrad(t *testing.T) {
	a := newTestArena(t)

	s := fromValues(a, 1, 3, 0.2, 0.3, 0.5)
	out := New(a, 3, 3)
	Clear(out)

	require.NoError(t, SoftmaxAddGrad(out, s))

	sv := s.Data()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := -sv[i] * sv[j]
			if i == j {
				want = sv[i] * (1 - sv[i])
			}
			assert.InDelta(t, want, out.At(i, j), 1e-7, "(%d,%d)", i, j)
		}
	}

	t.Run("rows of the jacobian sum to zero", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			var sum float32
			for _, v := range out.Row(i) {
				sum += v
			}
			assert.InDelta(t, 0, sum, 1e-7)
		}
	})

	t.Run("accumulates", func(t *testing.T) {
		before := out.At(0, 0)
		require.NoError(t, SoftmaxAddGrad(out, s))
		assert.InDelta(t, 2*before, out.At(0, 0), 1e-7)
	})

	t.Run("column vector", func(t *testing.T) {
		col := fromValues(a, 3, 1, 0.2, 0.3, 0.5)
		out := filled(a, 3, 3, 0)
		require.NoError(t, SoftmaxAddGrad(out, col))
		assert.InDelta(t, 0.16, out.At(0, 0), 1e-7)
	})

	t.Run("mismatch", func(t *testing.T) {
		require.ErrorIs(t, SoftmaxAddGrad(New(a, 4, 4), New(a, 2, 2)), ErrShapeMismatch)
		require.ErrorIs(t, SoftmaxAddGrad(New(a, 3, 2), s), ErrShapeMismatch)
	})
}

func TestSoftmaxBackward(t *testing.T) {
	a := newTestArena(t)

	s := fromValues(a, 1, 3, 0.2, 0.3, 0.5)
	grad := fromValues(a, 1, 3, 1, -2, 0.5)

	// The Jacobian is symmetric, so J·grad equals the backward pass.
	jac := filled(a, 3, 3, 0)
	require.NoError(t, SoftmaxAddGrad(jac, s))
	want := filled(a, 3, 1, 0)
	gradCol := fromValues(a, 3, 1, grad.Data()...)
	require.NoError(t, Mul(want, jac, gradCol, true, false, false))

	out := filled(a, 1, 3, 0)
	require.NoError(t, SoftmaxBackward(out, s, grad))
	assert.InDeltaSlice(t, want.Data(), out.Data(), 1e-6)

	t.Run("in place over grad", func(t *testing.T) {
		g := fromValues(a, 1, 3, 1, -2, 0.5)
		saved := fromValues(a, 1, 3, g.Data()...)
		require.NoError(t, SoftmaxBackward(g, s, saved))
		// g now holds grad + J·grad.
		for j := range g.Data() {
			assert.InDelta(t, saved.Data()[j]+out.Data()[j], g.Data()[j], 1e-6)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		require.ErrorIs(t, SoftmaxBackward(out, s, New(a, 3, 1)), ErrShapeMismatch)
		require.ErrorIs(t, SoftmaxBackward(s, s, grad), ErrAliased)
	})
}
