// Package nucleus is the numeric core of a small neural-network trainer.
//
// It combines three building blocks:
//
//   - arena: a reserve-then-commit bump allocator that owns all tensor memory
//   - matrix: dense row-major float32 matrices with forward and backward kernels
//   - random: a deterministic PCG32 stream for weight initialization
//
// A Workspace bundles one arena, one random stream and a logger for a
// training run:
//
//	ws, err := nucleus.New(
//	    nucleus.WithReserve(1<<30),
//	    nucleus.WithCommitGranularity(1<<20),
//	    nucleus.WithSeed(42, 54),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ws.Close()
//
//	w1 := ws.RandomNormal(784, 128, 0, 0.05)
//	x := ws.Matrix(32, 784)
//	h := ws.Matrix(32, 128)
//	if err := matrix.Mul(h, x, w1, true, false, false); err != nil {
//	    log.Fatal(err)
//	}
//
// Trained parameters are persisted with the checkpoint package on any
// blobstore backend (local disk, S3, MinIO).
//
// # Failure Model
//
// Running out of reserved memory is fatal: the arena calls its
// FatalHandler, which logs and exits by default. Shape mismatches are
// ordinary errors (matrix.ErrShapeMismatch) and never mutate outputs.
//
// # Concurrency Model
//
// A Workspace is not synchronized. Use one Workspace per goroutine.
package nucleus
