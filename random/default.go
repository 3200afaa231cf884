package random

import "sync"

var global struct {
	mu sync.Mutex
	s  Stream
}

// Seed restarts the default stream.
func Seed(state, seq uint64) {
	global.mu.Lock()
	global.s.Seed(state, seq)
	global.mu.Unlock()
}

// Uint32 draws from the default stream.
func Uint32() uint32 {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.s.Uint32()
}

// Float32 draws a uniform sample in [0, 1) from the default stream.
func Float32() float32 {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.s.Float32()
}

// NormFloat32 draws a standard normal sample from the default stream.
func NormFloat32() float32 {
	global.mu.Lock()
	defer global.mu.Unlock()
	return global.s.NormFloat32()
}

type defaultSource struct{}

func (defaultSource) Uint32() uint32       { return Uint32() }
func (defaultSource) Float32() float32     { return Float32() }
func (defaultSource) NormFloat32() float32 { return NormFloat32() }

// Default returns a Source backed by the default stream.
func Default() Source {
	return defaultSource{}
}
