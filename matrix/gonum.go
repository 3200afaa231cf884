package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// gonumView exposes a Matrix as a read-only float64 mat.Matrix.
type gonumView struct {
	m *Matrix
}

var _ mat.Matrix = gonumView{}

func (v gonumView) Dims() (int, int) { return v.m.rows, v.m.cols }

func (v gonumView) At(i, j int) float64 { return float64(v.m.At(i, j)) }

func (v gonumView) T() mat.Matrix { return mat.Transpose{Matrix: v} }

// Gonum returns a view of m implementing gonum's mat.Matrix. The view
// aliases m and shares its lifetime.
func (m *Matrix) Gonum() mat.Matrix {
	return gonumView{m: m}
}

// CopyFrom copies a gonum matrix into dst, rounding to float32. The shapes
// must be identical.
func CopyFrom(dst *Matrix, src mat.Matrix) error {
	r, c := src.Dims()
	if err := checkShape("CopyFrom", "dst", dst, Shape{r, c}); err != nil {
		return err
	}

	for i := 0; i < r; i++ {
		row := dst.data[i*c : (i+1)*c]
		for j := range row {
			row[j] = float32(src.At(i, j))
		}
	}
	return nil
}

// String formats m with gonum's matrix formatter.
func (m *Matrix) String() string {
	if m.Len() == 0 {
		return fmt.Sprintf("Matrix(%v)", m.Shape())
	}
	return fmt.Sprintf("%v", mat.Formatted(m.Gonum(), mat.Squeeze()))
}
