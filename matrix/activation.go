package matrix

import (
	"fmt"
	"math"

	"github.com/hupe1980/nucleus/internal/math32"
)

// ReLU computes out = max(0, in) elementwise. out may be in.
func ReLU(out, in *Matrix) error {
	if err := checkShape("ReLU", "out", out, in.Shape()); err != nil {
		return err
	}

	for i, v := range in.data {
		// NaN fails the comparison and is passed through.
		if v < 0 {
			v = 0
		}
		out.data[i] = v
	}
	return nil
}

// Softmax computes a numerically stable row-wise softmax:
// out[i][j] = exp(in[i][j] - max_i) / Σ_j exp(in[i][j] - max_i).
// out may be in.
func Softmax(out, in *Matrix) error {
	if err := checkShape("Softmax", "out", out, in.Shape()); err != nil {
		return err
	}

	for r := 0; r < in.rows; r++ {
		src := in.data[r*in.cols : (r+1)*in.cols]
		dst := out.data[r*out.cols : (r+1)*out.cols]

		m := math32.Max(src)

		var sum float32
		for j, v := range src {
			e := float32(math.Exp(float64(v - m)))
			dst[j] = e
			sum += e
		}
		for j := range dst {
			dst[j] /= sum
		}
	}
	return nil
}

// ReLUAddGrad accumulates the ReLU derivative of in into out:
// out += 1 where in > 0.
func ReLUAddGrad(out, in *Matrix) error {
	if err := checkShape("ReLUAddGrad", "out", out, in.Shape()); err != nil {
		return err
	}

	for i, v := range in.data {
		if v > 0 {
			out.data[i]++
		}
	}
	return nil
}

// ReLUBackward accumulates the upstream gradient through a ReLU:
// out += grad where in > 0. in is the ReLU's input.
func ReLUBackward(out, in, grad *Matrix) error {
	want := in.Shape()
	if err := checkShape("ReLUBackward", "grad", grad, want); err != nil {
		return err
	}
	if err := checkShape("ReLUBackward", "out", out, want); err != nil {
		return err
	}

	for i, v := range in.data {
		if v > 0 {
			out.data[i] += grad.data[i]
		}
	}
	return nil
}

// SoftmaxAddGrad accumulates the Jacobian of a softmax into out given the
// softmax output s: out[i][j] += s_i(δ_ij - s_j). s is a vector of n
// elements (1×n or n×1) and out is n×n.
func SoftmaxAddGrad(out, s *Matrix) error {
	n := s.Len()
	if s.rows != 1 && s.cols != 1 {
		return &ShapeError{Op: "SoftmaxAddGrad", Operand: "s", Want: Shape{1, n}, Got: s.Shape()}
	}
	if err := checkShape("SoftmaxAddGrad", "out", out, Shape{n, n}); err != nil {
		return err
	}
	if overlaps(out.data, s.data) {
		return fmt.Errorf("%w: SoftmaxAddGrad out and s", ErrAliased)
	}

	for i, si := range s.data {
		row := out.data[i*n : (i+1)*n]
		for j, sj := range s.data {
			d := -sj
			if i == j {
				d = 1 - sj
			}
			row[j] += float32(si * d)
		}
	}
	return nil
}

// SoftmaxBackward accumulates the row-wise Jacobian-vector product of a
// softmax into out: out[i][j] += s_ij (grad_ij - Σ_k grad_ik s_ik), where s
// is the softmax output and grad the upstream gradient. out may be grad.
func SoftmaxBackward(out, s, grad *Matrix) error {
	want := s.Shape()
	if err := checkShape("SoftmaxBackward", "grad", grad, want); err != nil {
		return err
	}
	if err := checkShape("SoftmaxBackward", "out", out, want); err != nil {
		return err
	}
	if overlaps(out.data, s.data) {
		return fmt.Errorf("%w: SoftmaxBackward out and s", ErrAliased)
	}

	for r := 0; r < s.rows; r++ {
		sr := s.data[r*s.cols : (r+1)*s.cols]
		gr := grad.data[r*s.cols : (r+1)*s.cols]
		or := out.data[r*s.cols : (r+1)*s.cols]

		dot := math32.Dot(0, gr, sr)
		for j, sj := range sr {
			or[j] += float32(sj * (gr[j] - dot))
		}
	}
	return nil
}
