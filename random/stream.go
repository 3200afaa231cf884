package random

import (
	"math"
	"math/bits"
)

const (
	multiplier = 6364136223846793005

	// Reference initial state of the PCG32 demo generator.
	defaultState = 0x853c49e6748fea9b
	defaultInc   = 0xda3e39cb94b95bdb
)

// Source is the sampling interface consumed by initialization routines.
type Source interface {
	Uint32() uint32
	Float32() float32
	NormFloat32() float32
}

// Stream is a PCG32 (XSH-RR) generator with a one-sample cache for the
// Box-Muller transform.
//
// The zero value is ready to use and starts from the reference state.
type Stream struct {
	state uint64
	inc   uint64 // always odd once initialized

	norm    float32
	hasNorm bool
}

// New returns a stream seeded with state and sequence selector seq.
func New(state, seq uint64) *Stream {
	s := &Stream{}
	s.Seed(state, seq)
	return s
}

// Seed restarts the stream. Streams with different seq values produce
// independent sequences even for the same state.
func (s *Stream) Seed(state, seq uint64) {
	s.state = 0
	s.inc = seq<<1 | 1
	s.step()
	s.state += state
	s.step()

	s.hasNorm = false
}

// Uint32 returns the next 32 uniformly distributed bits.
func (s *Stream) Uint32() uint32 {
	old := s.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

// Uint64 returns two consecutive outputs, high word first.
// It makes Stream a math/rand/v2 Source.
func (s *Stream) Uint64() uint64 {
	hi := uint64(s.Uint32())
	return hi<<32 | uint64(s.Uint32())
}

// Float32 returns a uniform sample in [0, 1).
func (s *Stream) Float32() float32 {
	// 24 bits fill the float32 mantissa exactly.
	return float32(s.Uint32()>>8) / (1 << 24)
}

// NormFloat32 returns a standard normal sample. Samples are generated in
// pairs; the second is cached and returned by the next call.
func (s *Stream) NormFloat32() float32 {
	if s.hasNorm {
		s.hasNorm = false
		return s.norm
	}

	var u1 float32
	for u1 == 0 {
		u1 = s.Float32()
	}
	u2 := s.Float32()

	mag := math.Sqrt(-2 * math.Log(float64(u1)))
	sin, cos := math.Sincos(2 * math.Pi * float64(u2))

	s.norm = float32(mag * sin)
	s.hasNorm = true
	return float32(mag * cos)
}

func (s *Stream) step() uint64 {
	if s.inc == 0 {
		s.state, s.inc = defaultState, defaultInc
	}
	old := s.state
	s.state = old*multiplier + s.inc
	return old
}
