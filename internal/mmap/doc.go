// Package mmap provides virtual-memory primitives on top of the platform's
// mapping APIs.
//
// # Overview
//
// Two kinds of mappings are supported:
//
//   - Reservation: an anonymous address range that is reserved up front
//     with no access rights and made usable piecewise with Commit. This is
//     the backing store of the arena allocator: the address range never
//     moves, so every slice handed out stays valid until Release.
//   - Mapping: a read-only view of a file, used by the local blob store to
//     read checkpoints without copying them through kernel buffers.
//
// # Usage
//
//	r, err := mmap.Reserve(1 << 30)
//	if err != nil { ... }
//	defer r.Release()
//
//	// Make the first 1 MiB readable and writable.
//	if err := r.Commit(0, 1<<20); err != nil { ... }
//	buf := r.Bytes()[:1<<20]
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with PROT_NONE for reservation,
//     mprotect(2) for commit, madvise(2) for decommit.
//   - Windows: VirtualAlloc with MEM_RESERVE / MEM_COMMIT and VirtualFree.
//   - Other targets (wasm, plan9): heap-backed fallback, commit is a no-op.
//
// # Thread Safety
//
// Close and Release are idempotent and guarded by atomics. Commit and
// Decommit are not synchronized; callers serialize them.
package mmap
