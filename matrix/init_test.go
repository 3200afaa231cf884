package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/nucleus/random"
)

func TestFillUniform(t *testing.T) {
	a := newTestArena(t)
	m := New(a, 100, 100)

	FillUniform(m, random.New(1, 2), -2, 3)
	for _, v := range m.Data() {
		assert.GreaterOrEqual(t, v, float32(-2))
		assert.LessOrEqual(t, v, float32(3))
	}
	assert.InDelta(t, 0.5, float64(Sum(m))/float64(m.Len()), 0.05)
}

func TestFillNormal(t *testing.T) {
	a := newTestArena(t)
	m := New(a, 200, 200)

	FillNormal(m, random.New(3, 4), 1, 2)

	var sum, sumSq float64
	for _, v := range m.Data() {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	n := float64(m.Len())
	mean := sum / n
	assert.InDelta(t, 1, mean, 0.05)
	assert.InDelta(t, 2, math.Sqrt(sumSq/n-mean*mean), 0.03)
}

func TestInitIsReproducible(t *testing.T) {
	a := newTestArena(t)

	x := New(a, 8, 8)
	y := New(a, 8, 8)
	FillNormal(x, random.New(9, 9), 0, 1)
	FillNormal(y, random.New(9, 9), 0, 1)
	assert.Equal(t, x.Data(), y.Data())
}

func TestXavier(t *testing.T) {
	a := newTestArena(t)
	m := New(a, 64, 32)

	Xavier(m, random.New(5, 5))

	limit := float32(math.Sqrt(6.0 / 96))
	for _, v := range m.Data() {
		assert.GreaterOrEqual(t, v, -limit)
		assert.LessOrEqual(t, v, limit)
	}

	assert.NotPanics(t, func() { Xavier(New(a, 0, 0), random.New(5, 5)) })
}

func TestHe(t *testing.T) {
	a := newTestArena(t)
	m := New(a, 512, 128)

	He(m, random.New(6, 6))

	var sumSq float64
	for _, v := range m.Data() {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, math.Sqrt(2.0/512), math.Sqrt(sumSq/float64(m.Len())), 0.005)

	assert.NotPanics(t, func() { He(New(a, 0, 4), random.New(6, 6)) })
}

func TestInitFromDefaultSource(t *testing.T) {
	a := newTestArena(t)

	random.Seed(1, 1)
	x := New(a, 2, 2)
	FillUniform(x, random.Default(), 0, 1)

	random.Seed(1, 1)
	y := New(a, 2, 2)
	FillUniform(y, random.Default(), 0, 1)

	assert.Equal(t, x.Data(), y.Data())
}
