package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a single charge is larger than the
// whole memory budget and could never be granted.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config sets the budgets a Controller enforces. Zero values mean unlimited,
// except MaxBackgroundWorkers which defaults to 1.
type Config struct {
	// MemoryLimitBytes caps the bytes committed by every arena charged to
	// the controller, plus blobs held by a caching store.
	MemoryLimitBytes int64

	// MaxBackgroundWorkers caps concurrent checkpoint saves and uploads.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec throttles checkpoint reads and writes.
	IOLimitBytesPerSec int64
}

// Controller is shared by the workspaces and checkpoint writers of one
// process. Arenas charge it per commit and refund on Destroy; checkpoint
// writers take a background slot per blob and pace their bytes through it.
//
// A nil *Controller grants everything.
type Controller struct {
	limit   int64
	budget  *semaphore.Weighted // nil without a memory limit
	charged atomic.Int64

	slots *semaphore.Weighted
	io    *rate.Limiter // nil without an IO limit
}

// NewController creates a Controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{
		limit: cfg.MemoryLimitBytes,
		slots: semaphore.NewWeighted(max(cfg.MaxBackgroundWorkers, 1)),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.budget = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		// One second of throughput is the largest single request.
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireMemory charges bytes of committed memory. With a limit it waits
// until enough is refunded or ctx is done; a charge larger than the limit
// fails at once with ErrMemoryLimitExceeded.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.budget != nil {
		if bytes > c.limit {
			return ErrMemoryLimitExceeded
		}
		if err := c.budget.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.charged.Add(bytes)
	return nil
}

// TryAcquireMemory charges bytes only if the budget has room right now.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.budget != nil && !c.budget.TryAcquire(bytes) {
		return false
	}
	c.charged.Add(bytes)
	return true
}

// ReleaseMemory refunds a previous charge.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.budget != nil {
		c.budget.Release(bytes)
	}
	c.charged.Add(-bytes)
}

// MemoryUsage returns the bytes currently charged.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.charged.Load()
}

// MemoryLimit returns the memory budget, 0 when unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limit
}

// AcquireBackground takes a checkpoint worker slot, waiting while all are busy.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.slots.Acquire(ctx, 1)
}

// TryAcquireBackground takes a worker slot if one is free.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	return c.slots.TryAcquire(1)
}

// ReleaseBackground returns a worker slot.
func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.slots.Release(1)
}

// AcquireIO waits until bytes of checkpoint IO may proceed. bytes must not
// exceed IOBurst.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.io == nil {
		return nil
	}
	return c.io.WaitN(ctx, bytes)
}

// IOBurst returns the largest request AcquireIO accepts, 0 when IO is
// unlimited.
func (c *Controller) IOBurst() int {
	if c == nil || c.io == nil {
		return 0
	}
	return c.io.Burst()
}
