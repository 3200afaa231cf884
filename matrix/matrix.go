package matrix

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/internal/math32"
)

// Shape is a matrix's dimensions.
type Shape struct {
	Rows, Cols int
}

// Len returns Rows*Cols.
func (s Shape) Len() int { return s.Rows * s.Cols }

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Matrix is a row-major rows×cols view over arena-owned float32 storage.
type Matrix struct {
	rows, cols int
	data       []float32
}

// New allocates an uninitialized rows×cols matrix from a. Zero-sized
// matrices are legal. Running out of arena memory takes the arena's fatal
// path; negative dimensions panic.
func New(a *arena.Arena, rows, cols int) *Matrix {
	checkDims(rows, cols)
	return &Matrix{
		rows: rows,
		cols: cols,
		data: arena.AllocSlice[float32](a, rows*cols),
	}
}

// TryNew is like New but returns allocation failures as errors.
func TryNew(a *arena.Arena, rows, cols int) (*Matrix, error) {
	checkDims(rows, cols)

	data, err := arena.TryAllocSlice[float32](a, rows*cols)
	if err != nil {
		return nil, fmt.Errorf("matrix: allocate %dx%d: %w", rows, cols, err)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

func checkDims(rows, cols int) {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: negative dimensions %dx%d", rows, cols))
	}
	if cols != 0 && rows > math.MaxInt/cols {
		panic(fmt.Sprintf("matrix: dimensions %dx%d overflow", rows, cols))
	}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns the matrix dimensions.
func (m *Matrix) Shape() Shape { return Shape{Rows: m.rows, Cols: m.cols} }

// Len returns the number of elements.
func (m *Matrix) Len() int { return len(m.data) }

// SameShape reports whether m and o have identical dimensions.
func (m *Matrix) SameShape(o *Matrix) bool {
	return m.rows == o.rows && m.cols == o.cols
}

// Data returns the row-major backing slice. It aliases arena memory.
func (m *Matrix) Data() []float32 { return m.data }

// Row returns row i as a slice aliasing the matrix.
func (m *Matrix) Row(i int) []float32 {
	if uint(i) >= uint(m.rows) {
		panic(fmt.Sprintf("matrix: row %d out of range [0,%d)", i, m.rows))
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float32 {
	return m.data[m.index(i, j)]
}

// Set sets the element at row i, column j.
func (m *Matrix) Set(i, j int, v float32) {
	m.data[m.index(i, j)] = v
}

func (m *Matrix) index(i, j int) int {
	if uint(i) >= uint(m.rows) || uint(j) >= uint(m.cols) {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range %v", i, j, m.Shape()))
	}
	return i*m.cols + j
}

// Clear sets every element to zero.
func Clear(m *Matrix) {
	clear(m.data)
}

// Fill sets every element to v.
func Fill(m *Matrix, v float32) {
	math32.Fill(m.data, v)
}

// Copy copies src into dst. The shapes must be identical.
func Copy(dst, src *Matrix) error {
	if err := checkShape("Copy", "dst", dst, src.Shape()); err != nil {
		return err
	}
	copy(dst.data, src.data)
	return nil
}

// Scale multiplies every element by f in place.
func Scale(m *Matrix, f float32) {
	math32.Scale(m.data, f)
}

// Sum returns the sum of all elements in row-major order. An empty matrix
// sums to zero.
func Sum(m *Matrix) float32 {
	return math32.Sum(m.data)
}

// overlaps reports whether x and y share any element.
func overlaps(x, y []float32) bool {
	if len(x) == 0 || len(y) == 0 {
		return false
	}

	const size = unsafe.Sizeof(float32(0))
	xs := uintptr(unsafe.Pointer(unsafe.SliceData(x)))
	ys := uintptr(unsafe.Pointer(unsafe.SliceData(y)))
	return xs < ys+uintptr(len(y))*size && ys < xs+uintptr(len(x))*size
}
