package main

import (
	"math"

	"github.com/hupe1980/nucleus"
	"github.com/hupe1980/nucleus/matrix"
	"github.com/hupe1980/nucleus/random"
)

// model is a two-layer perceptron: softmax(relu(x·w1)·w2).
type model struct {
	w1, w2 *matrix.Matrix
}

func newModel(perm *nucleus.Workspace, inputs, hidden, classes int) *model {
	m := &model{
		w1: perm.Matrix(inputs, hidden),
		w2: perm.Matrix(hidden, classes),
	}
	matrix.He(m.w1, perm.Stream())
	matrix.Xavier(m.w2, perm.Stream())
	return m
}

func (m *model) params() map[string]*matrix.Matrix {
	return map[string]*matrix.Matrix{"w1": m.w1, "w2": m.w2}
}

// batch draws n points from two interleaved Gaussian blobs per class, a
// problem a linear model cannot separate.
func batch(ws *nucleus.Workspace, src random.Source, n int) (x, p *matrix.Matrix) {
	x = ws.Matrix(n, 2)
	p = ws.Zeros(n, 2)

	centers := [4][2]float32{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}}
	for i := range n {
		c := int(src.Uint32() % 4)
		x.Set(i, 0, centers[c][0]+0.3*src.NormFloat32())
		x.Set(i, 1, centers[c][1]+0.3*src.NormFloat32())
		p.Set(i, c/2, 1)
	}
	return x, p
}

// step runs one forward and backward pass on scratch memory and applies an
// SGD update. It returns the mean loss of the batch.
func (m *model) step(scratch *nucleus.Workspace, x, p *matrix.Matrix, lr float32) (float32, error) {
	n := x.Rows()
	hidden := m.w1.Cols()
	classes := m.w2.Cols()

	pre := scratch.Matrix(n, hidden)
	h := scratch.Matrix(n, hidden)
	z := scratch.Matrix(n, classes)
	q := scratch.Matrix(n, classes)
	loss := scratch.Matrix(1, 1)

	if err := matrix.Mul(pre, x, m.w1, true, false, false); err != nil {
		return 0, err
	}
	if err := matrix.ReLU(h, pre); err != nil {
		return 0, err
	}
	if err := matrix.Mul(z, h, m.w2, true, false, false); err != nil {
		return 0, err
	}
	if err := matrix.Softmax(q, z); err != nil {
		return 0, err
	}
	if err := matrix.CrossEntropy(loss, p, q); err != nil {
		return 0, err
	}

	dz := scratch.Zeros(n, classes)
	if err := matrix.SoftmaxCrossEntropyAddGrad(dz, p, q); err != nil {
		return 0, err
	}

	dw2 := scratch.Matrix(hidden, classes)
	if err := matrix.Mul(dw2, h, dz, true, true, false); err != nil {
		return 0, err
	}
	dh := scratch.Matrix(n, hidden)
	if err := matrix.Mul(dh, dz, m.w2, true, false, true); err != nil {
		return 0, err
	}
	dpre := scratch.Zeros(n, hidden)
	if err := matrix.ReLUBackward(dpre, pre, dh); err != nil {
		return 0, err
	}
	dw1 := scratch.Matrix(m.w1.Rows(), hidden)
	if err := matrix.Mul(dw1, x, dpre, true, true, false); err != nil {
		return 0, err
	}

	scale := -lr / float32(n)
	for _, u := range []struct{ w, dw *matrix.Matrix }{{m.w1, dw1}, {m.w2, dw2}} {
		matrix.Scale(u.dw, scale)
		if err := matrix.Add(u.w, u.w, u.dw); err != nil {
			return 0, err
		}
	}

	mean := loss.At(0, 0) / float32(n)
	if math.IsNaN(float64(mean)) {
		return 0, errDiverged
	}
	return mean, nil
}

// accuracy classifies x with the current parameters.
func (m *model) accuracy(scratch *nucleus.Workspace, x, p *matrix.Matrix) (float64, error) {
	h := scratch.Matrix(x.Rows(), m.w1.Cols())
	if err := matrix.Mul(h, x, m.w1, true, false, false); err != nil {
		return 0, err
	}
	if err := matrix.ReLU(h, h); err != nil {
		return 0, err
	}
	z := scratch.Matrix(x.Rows(), m.w2.Cols())
	if err := matrix.Mul(z, h, m.w2, true, false, false); err != nil {
		return 0, err
	}

	correct := 0
	for i := range z.Rows() {
		if argmax(z.Row(i)) == argmax(p.Row(i)) {
			correct++
		}
	}
	return float64(correct) / float64(z.Rows()), nil
}

func argmax(xs []float32) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}
