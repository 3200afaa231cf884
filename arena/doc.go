// Package arena provides a reserve-then-commit bump allocator.
//
// An Arena reserves one large, contiguous address range up front and makes
// it usable in commit-granularity steps as allocations demand. Allocation is
// a pointer bump: no headers, no free lists, no per-allocation bookkeeping.
// Memory lives outside the Go heap (mmap/VirtualAlloc), so it adds no GC
// pressure and never moves.
//
// # Lifecycle
//
//	a := arena.New(1<<30, 1<<20) // reserve 1 GiB, commit 1 MiB at a time
//	defer a.Destroy()
//
//	buf := a.Alloc(4096, 64)
//	xs := arena.AllocSlice[float32](a, 1024)
//
//	a.Reset() // reuse committed memory, invalidates earlier allocations
//
// Destroy releases the whole reservation at once. Every slice handed out by
// the arena becomes invalid at that point; there are no individual frees.
//
// # Failure Model
//
// Running past the reservation, or a failed platform commit, is fatal. The
// arena calls its FatalHandler, which by default logs the error and exits
// the process. Arenas are meant to be sized generously at deployment time.
// TryAlloc exposes the same failures as errors for callers that want them.
//
// # Concurrency Model
//
// An Arena is not synchronized. Use one arena per goroutine, or serialize
// access externally.
//
// # Element Types
//
// The garbage collector does not scan arena memory. Only pointer-free
// element types (see Element) may be stored in it.
package arena
