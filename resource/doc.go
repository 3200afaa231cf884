// Package resource budgets what a training process spends outside the
// matrix kernels. One Controller is shared by its workspaces and checkpoint
// writers and tracks three things:
//
//   - Memory: committed arena memory, charged per commit and released when
//     the arena is destroyed
//   - Concurrency: background worker slots for parallel checkpoint uploads
//   - IO: a token bucket that throttles checkpoint writes
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic
// counter for usage:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB of committed arena memory
//	})
//
//	a := arena.New(8<<30, 1<<20, arena.WithMemoryAcquirer(rc))
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// A nil Controller grants every request, so budgets stay optional.
package resource
