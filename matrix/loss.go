package matrix

import "math"

// Epsilon is the floor applied to predicted probabilities before taking a
// logarithm or dividing.
const Epsilon = 1e-7

// CrossEntropy computes -p·log(max(q, Epsilon)) for the true distribution p
// and the prediction q, which must share a shape. The shape of out selects
// the reduction:
//
//   - same shape as p: elementwise terms
//   - p.Rows×1: one sum per row
//   - 1×1: the total
func CrossEntropy(out, p, q *Matrix) error {
	want := p.Shape()
	if err := checkShape("CrossEntropy", "q", q, want); err != nil {
		return err
	}

	switch out.Shape() {
	case want:
		for i := range p.data {
			out.data[i] = crossEntropyTerm(p.data[i], q.data[i])
		}
	case Shape{p.rows, 1}:
		for r := 0; r < p.rows; r++ {
			var sum float32
			for i := r * p.cols; i < (r+1)*p.cols; i++ {
				sum += crossEntropyTerm(p.data[i], q.data[i])
			}
			out.data[r] = sum
		}
	case Shape{1, 1}:
		var sum float32
		for i := range p.data {
			sum += crossEntropyTerm(p.data[i], q.data[i])
		}
		out.data[0] = sum
	default:
		return &ShapeError{Op: "CrossEntropy", Operand: "out", Want: want, Got: out.Shape()}
	}
	return nil
}

func crossEntropyTerm(p, q float32) float32 {
	return -p * float32(math.Log(float64(max(q, Epsilon))))
}

// CrossEntropyAddGrad accumulates the gradient of the cross-entropy with
// respect to q into out: out += -p/max(q, Epsilon).
func CrossEntropyAddGrad(out, p, q *Matrix) error {
	want := p.Shape()
	if err := checkShape("CrossEntropyAddGrad", "q", q, want); err != nil {
		return err
	}
	if err := checkShape("CrossEntropyAddGrad", "out", out, want); err != nil {
		return err
	}

	for i := range p.data {
		out.data[i] += -p.data[i] / max(q.data[i], Epsilon)
	}
	return nil
}

// SoftmaxCrossEntropyAddGrad accumulates the gradient of
// CrossEntropy(p, Softmax(z)) with respect to the logits z, given the
// softmax output q: out += q - p.
func SoftmaxCrossEntropyAddGrad(out, p, q *Matrix) error {
	want := p.Shape()
	if err := checkShape("SoftmaxCrossEntropyAddGrad", "q", q, want); err != nil {
		return err
	}
	if err := checkShape("SoftmaxCrossEntropyAddGrad", "out", out, want); err != nil {
		return err
	}

	for i := range p.data {
		out.data[i] += q.data[i] - p.data[i]
	}
	return nil
}
