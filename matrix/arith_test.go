package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/random"
)

// integral fills m with small integers so float32 products are exact.
func integral(m *Matrix, s *random.Stream) {
	for i := range m.data {
		m.data[i] = float32(int(s.Uint32()%11) - 5)
	}
}

func TestAddSub(t *testing.T) {
	a := newTestArena(t)

	x := fromValues(a, 2, 3, 1, 2, 3, 4, 5, 6)
	y := fromValues(a, 2, 3, 10, -20, 30, -40, 50, -60)
	out := New(a, 2, 3)

	require.NoError(t, Add(out, x, y))
	assert.Equal(t, []float32{11, -18, 33, -36, 55, -54}, out.Data())

	require.NoError(t, Sub(out, out, y))
	assert.Equal(t, x.Data(), out.Data())

	t.Run("round trip", func(t *testing.T) {
		s := random.New(7, 7)
		for _, shape := range []Shape{{1, 1}, {3, 7}, {16, 16}} {
			x := New(a, shape.Rows, shape.Cols)
			y := New(a, shape.Rows, shape.Cols)
			integral(x, s)
			integral(y, s)

			out := New(a, shape.Rows, shape.Cols)
			require.NoError(t, Add(out, x, y))
			require.NoError(t, Sub(out, out, y))
			assert.Equal(t, x.Data(), out.Data())
		}
	})

	t.Run("in place", func(t *testing.T) {
		x := fromValues(a, 1, 2, 1, 2)
		require.NoError(t, Add(x, x, x))
		assert.Equal(t, []float32{2, 4}, x.Data())
	})

	t.Run("mismatch leaves out untouched", func(t *testing.T) {
		out := filled(a, 2, 3, 42)

		require.ErrorIs(t, Add(out, x, New(a, 3, 2)), ErrShapeMismatch)
		require.ErrorIs(t, Sub(out, x, New(a, 2, 2)), ErrShapeMismatch)
		require.ErrorIs(t, Add(New(a, 3, 2), x, y), ErrShapeMismatch)
		assert.Equal(t, []float32{42, 42, 42, 42, 42, 42}, out.Data())
	})
}

func TestMul(t *testing.T) {
	a := newTestArena(t)

	t.Run("row sums", func(t *testing.T) {
		x := fromValues(a, 2, 2, 1, 2, 3, 4)
		ones := filled(a, 2, 1, 1)
		out := filled(a, 2, 1, 99)

		require.NoError(t, Mul(out, x, ones, true, false, false))
		assert.Equal(t, []float32{3, 7}, out.Data())
	})

	t.Run("inner dimension mismatch leaves out untouched", func(t *testing.T) {
		x := filled(a, 2, 3, 1)
		y := filled(a, 2, 3, 1)
		out := filled(a, 2, 3, 42)

		err := Mul(out, x, y, true, false, false)
		require.ErrorIs(t, err, ErrShapeMismatch)
		assert.Equal(t, []float32{42, 42, 42, 42, 42, 42}, out.Data())
	})

	t.Run("output shape mismatch", func(t *testing.T) {
		out := filled(a, 3, 3, 42)

		err := Mul(out, New(a, 2, 4), New(a, 4, 3), true, false, false)
		var se *ShapeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "out", se.Operand)
		assert.Equal(t, Shape{2, 3}, se.Want)
		assert.Equal(t, float32(42*9), Sum(out))
	})

	t.Run("accumulates without zeroing", func(t *testing.T) {
		x := fromValues(a, 1, 2, 1, 2)
		y := fromValues(a, 2, 1, 3, 4)
		out := fromValues(a, 1, 1, 100)

		require.NoError(t, Mul(out, x, y, false, false, false))
		assert.Equal(t, []float32{111}, out.Data())

		require.NoError(t, Mul(out, x, y, false, false, false))
		assert.Equal(t, []float32{122}, out.Data())
	})

	t.Run("rejects aliased output", func(t *testing.T) {
		x := fromValues(a, 2, 2, 1, 2, 3, 4)
		y := fromValues(a, 2, 2, 1, 0, 0, 1)

		require.ErrorIs(t, Mul(x, x, y, true, false, false), ErrAliased)
		require.ErrorIs(t, Mul(y, x, y, true, false, false), ErrAliased)
		assert.Equal(t, []float32{1, 2, 3, 4}, x.Data())
	})

	t.Run("empty inner dimension", func(t *testing.T) {
		out := filled(a, 2, 2, 5)
		require.NoError(t, Mul(out, New(a, 2, 0), New(a, 0, 2), false, false, false))
		assert.Equal(t, float32(20), Sum(out))

		require.NoError(t, Mul(out, New(a, 2, 0), New(a, 0, 2), true, false, false))
		assert.Equal(t, float32(0), Sum(out))
	})

	t.Run("empty output columns with transpose", func(t *testing.T) {
		out := New(a, 2, 0)
		require.NoError(t, Mul(out, filled(a, 2, 3, 1), New(a, 0, 3), true, false, true))
	})
}

func TestMulMatchesGonum(t *testing.T) {
	a := newTestArena(t)
	s := random.New(42, 1)

	const m, k, n = 5, 7, 3

	for _, tc := range []struct {
		name       string
		transposeA bool
		transposeB bool
	}{
		{"NN", false, false},
		{"TN", true, false},
		{"NT", false, true},
		{"TT", true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			x := New(a, m, k)
			if tc.transposeA {
				x = New(a, k, m)
			}
			y := New(a, k, n)
			if tc.transposeB {
				y = New(a, n, k)
			}
			integral(x, s)
			integral(y, s)

			out := New(a, m, n)
			require.NoError(t, Mul(out, x, y, true, tc.transposeA, tc.transposeB))

			var xa, ya mat.Matrix = x.Gonum(), y.Gonum()
			if tc.transposeA {
				xa = xa.T()
			}
			if tc.transposeB {
				ya = ya.T()
			}
			var want mat.Dense
			want.Mul(xa, ya)

			for i := 0; i < m; i++ {
				for j := 0; j < n; j++ {
					require.Equal(t, float32(want.At(i, j)), out.At(i, j), "(%d,%d)", i, j)
				}
			}
		})
	}
}

func TestMulDeterministic(t *testing.T) {
	a := newTestArena(t)
	s := random.New(3, 3)

	x := New(a, 16, 32)
	y := New(a, 32, 8)
	FillNormal(x, s, 0, 1)
	FillNormal(y, s, 0, 1)

	first := New(a, 16, 8)
	second := New(a, 16, 8)
	require.NoError(t, Mul(first, x, y, true, false, false))
	require.NoError(t, Mul(second, x, y, true, false, false))
	assert.Equal(t, first.Data(), second.Data())
}

func BenchmarkMul(b *testing.B) {
	a := arena.New(64<<20, 0)
	defer a.Destroy()

	s := random.New(1, 1)
	x := New(a, 128, 128)
	y := New(a, 128, 128)
	out := New(a, 128, 128)
	FillUniform(x, s, -1, 1)
	FillUniform(y, s, -1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Mul(out, x, y, true, false, false)
	}
}

func BenchmarkMulTransposeB(b *testing.B) {
	a := arena.New(64<<20, 0)
	defer a.Destroy()

	s := random.New(1, 1)
	x := New(a, 128, 128)
	y := New(a, 128, 128)
	out := New(a, 128, 128)
	FillUniform(x, s, -1, 1)
	FillUniform(y, s, -1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Mul(out, x, y, true, false, true)
	}
}
