package nucleus

import (
	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/resource"
)

const (
	// DefaultReserve is the address space reserved by New (1 GiB).
	DefaultReserve = 1 << 30
	// DefaultCommitGranularity is the commit step used by New (1 MiB).
	DefaultCommitGranularity = arena.DefaultCommitGranularity
)

type options struct {
	reserve      int
	granularity  int
	seedState    uint64
	seedSeq      uint64
	seeded       bool
	logger       *Logger
	memoryLimit  int64
	rc           *resource.Controller
	metrics      MetricsObserver
	fatalHandler arena.FatalHandler
	guarded      bool
}

// Option configures a Workspace.
type Option func(*options)

// WithReserve sets the arena reservation in bytes.
func WithReserve(bytes int) Option {
	return func(o *options) {
		o.reserve = bytes
	}
}

// WithCommitGranularity sets the arena commit step in bytes.
func WithCommitGranularity(bytes int) Option {
	return func(o *options) {
		o.granularity = bytes
	}
}

// WithSeed seeds the workspace random stream. Without it the stream uses
// the PCG32 default state, so runs are still reproducible.
func WithSeed(state, seq uint64) Option {
	return func(o *options) {
		o.seedState = state
		o.seedSeq = seq
		o.seeded = true
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMemoryLimit caps committed arena memory. A commit beyond the limit is
// fatal for Matrix and ErrArenaExhausted for TryMatrix.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController charges arena commits against an existing
// controller shared with other components (checkpoint IO, blob caches).
// It takes precedence over WithMemoryLimit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMetricsObserver registers an observer for arena lifecycle events.
func WithMetricsObserver(m MetricsObserver) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithFatalHandler replaces the arena's default fatal handler.
func WithFatalHandler(h arena.FatalHandler) Option {
	return func(o *options) {
		o.fatalHandler = h
	}
}

// WithGuardedRelease keeps the released arena mapped without access so
// stale matrices fault. Intended for tests and instrumented builds.
func WithGuardedRelease() Option {
	return func(o *options) {
		o.guarded = true
	}
}
