package nucleus

import (
	"sync/atomic"

	"github.com/hupe1980/nucleus/arena"
)

// MetricsObserver receives arena lifecycle events. Implement it to export
// memory usage to a monitoring system; see metrics/prom for Prometheus.
type MetricsObserver interface {
	// OnCommit is called after bytes were committed; total is the new
	// committed size.
	OnCommit(bytes, total int)

	// OnReset is called by Workspace.Reset with the discarded offset.
	OnReset(offset int)

	// OnDestroy is called by Workspace.Close with the released committed size.
	OnDestroy(committed int)
}

var _ arena.Observer = MetricsObserver(nil)

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnCommit(int, int) {}
func (NoopMetricsObserver) OnReset(int)       {}
func (NoopMetricsObserver) OnDestroy(int)     {}

// BasicMetricsObserver keeps simple in-memory counters.
// Useful for debugging and tests without external dependencies.
type BasicMetricsObserver struct {
	Commits        atomic.Int64
	CommittedBytes atomic.Int64
	Resets         atomic.Int64
	ResetBytes     atomic.Int64
	Destroys       atomic.Int64
}

// OnCommit implements MetricsObserver.
func (b *BasicMetricsObserver) OnCommit(bytes, total int) {
	b.Commits.Add(1)
	b.CommittedBytes.Store(int64(total))
}

// OnReset implements MetricsObserver.
func (b *BasicMetricsObserver) OnReset(offset int) {
	b.Resets.Add(1)
	b.ResetBytes.Add(int64(offset))
}

// OnDestroy implements MetricsObserver.
func (b *BasicMetricsObserver) OnDestroy(int) {
	b.Destroys.Add(1)
	b.CommittedBytes.Store(0)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsObserver) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Commits:        b.Commits.Load(),
		CommittedBytes: b.CommittedBytes.Load(),
		Resets:         b.Resets.Load(),
		ResetBytes:     b.ResetBytes.Load(),
		Destroys:       b.Destroys.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsObserver state.
type BasicMetricsStats struct {
	Commits        int64
	CommittedBytes int64
	Resets         int64
	ResetBytes     int64
	Destroys       int64
}
