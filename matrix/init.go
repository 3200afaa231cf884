package matrix

import (
	"math"

	"github.com/hupe1980/nucleus/random"
)

// FillUniform sets every element to a uniform sample between lo and hi.
func FillUniform(m *Matrix, src random.Source, lo, hi float32) {
	span := hi - lo
	for i := range m.data {
		m.data[i] = lo + span*src.Float32()
	}
}

// FillNormal sets every element to a normal sample with the given mean and
// standard deviation.
func FillNormal(m *Matrix, src random.Source, mean, std float32) {
	for i := range m.data {
		m.data[i] = mean + std*src.NormFloat32()
	}
}

// Xavier initializes a fanIn×fanOut weight matrix with the Glorot uniform
// distribution, U(-l, l) with l = sqrt(6/(fanIn+fanOut)).
func Xavier(m *Matrix, src random.Source) {
	if m.Len() == 0 {
		return
	}
	limit := float32(math.Sqrt(6 / float64(m.rows+m.cols)))
	FillUniform(m, src, -limit, limit)
}

// He initializes a fanIn×fanOut weight matrix for ReLU layers with
// N(0, 2/fanIn).
func He(m *Matrix, src random.Source) {
	if m.Len() == 0 {
		return
	}
	FillNormal(m, src, 0, float32(math.Sqrt(2/float64(m.rows))))
}
