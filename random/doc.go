// Package random provides a seedable PCG32 stream of uniform and normal
// float32 samples.
//
// A Stream is a plain value: copy it to fork a sequence, seed it to restart
// one. Independent streams never share state. The package-level functions
// operate on a process-wide default stream guarded by a mutex; it starts
// from the PCG reference state until Seed is called.
//
//	s := random.New(42, 54)
//	w := s.NormFloat32()
//
// Streams are not safe for concurrent use. The default stream is.
package random
