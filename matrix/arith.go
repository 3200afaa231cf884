package matrix

import (
	"fmt"

	"github.com/hupe1980/nucleus/internal/math32"
)

// Add computes out = a + b elementwise. All three shapes must be identical;
// out may be a or b.
func Add(out, a, b *Matrix) error {
	if err := checkElementwise("Add", out, a, b); err != nil {
		return err
	}
	math32.Add(out.data, a.data, b.data)
	return nil
}

// Sub computes out = a - b elementwise. All three shapes must be identical;
// out may be a or b.
func Sub(out, a, b *Matrix) error {
	if err := checkElementwise("Sub", out, a, b); err != nil {
		return err
	}
	math32.Sub(out.data, a.data, b.data)
	return nil
}

func checkElementwise(op string, out, a, b *Matrix) error {
	want := a.Shape()
	if err := checkShape(op, "b", b, want); err != nil {
		return err
	}
	return checkShape(op, "out", out, want)
}

// dims returns the effective dimensions of m under a logical transpose.
func (m *Matrix) dims(transpose bool) (rows, cols int) {
	if transpose {
		return m.cols, m.rows
	}
	return m.rows, m.cols
}

// Mul computes the matrix product out (+)= op(a) × op(b), where op
// transposes its operand logically when the matching flag is set. The
// stored buffers are never rearranged.
//
// With zeroOut set, out is cleared first; otherwise the product is
// accumulated into out's existing contents. Each element adds its terms in
// increasing inner index order. out must not share memory with a or b.
func Mul(out, a, b *Matrix, zeroOut, transposeA, transposeB bool) error {
	aRows, aCols := a.dims(transposeA)
	bRows, bCols := b.dims(transposeB)

	if aCols != bRows {
		return &ShapeError{Op: "Mul", Operand: "b", Want: Shape{aCols, bCols}, Got: Shape{bRows, bCols}}
	}
	if err := checkShape("Mul", "out", out, Shape{aRows, bCols}); err != nil {
		return err
	}
	if overlaps(out.data, a.data) {
		return fmt.Errorf("%w: Mul out and a", ErrAliased)
	}
	if overlaps(out.data, b.data) {
		return fmt.Errorf("%w: Mul out and b", ErrAliased)
	}

	if zeroOut {
		clear(out.data)
	}
	if bCols == 0 {
		return nil
	}

	for i := 0; i < aRows; i++ {
		row := out.data[i*bCols : (i+1)*bCols]
		for k := 0; k < aCols; k++ {
			var aik float32
			if transposeA {
				aik = a.data[k*a.cols+i]
			} else {
				aik = a.data[i*a.cols+k]
			}

			if transposeB {
				math32.AxpyStride(aik, b.data[k:], b.cols, row)
			} else {
				math32.Axpy(aik, b.data[k*b.cols:(k+1)*b.cols], row)
			}
		}
	}
	return nil
}
