package arena

import (
	"context"
	"log/slog"
	"os"
)

// MemoryAcquirer charges committed memory against a budget.
// *resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// Observer receives commit lifecycle events.
type Observer interface {
	// OnCommit is called after bytes were committed; committed is the new total.
	OnCommit(bytes, committed int)
	// OnReset is called by Reset with the offset that was discarded.
	OnReset(offset int)
	// OnDestroy is called by Destroy with the committed total that was released.
	OnDestroy(committed int)
}

// FatalHandler is called for unrecoverable allocation failures.
// It must not return; if it does, the arena panics with err.
type FatalHandler func(err error)

type options struct {
	alignment int
	zero      bool
	guarded   bool
	acquirer  MemoryAcquirer
	observer  Observer
	logger    *slog.Logger
	fatal     FatalHandler
}

// Option configures an Arena.
type Option func(*options)

// WithAlignment sets the alignment used when Alloc is called with align 0.
// Values that are not a power of two are ignored.
func WithAlignment(align int) Option {
	return func(o *options) {
		if isPowerOfTwo(align) {
			o.alignment = align
		}
	}
}

// WithZeroing makes every allocation zero-filled.
func WithZeroing() Option {
	return func(o *options) {
		o.zero = true
	}
}

// WithGuardedRelease makes Destroy decommit the reservation and keep the
// address range mapped with no access rights instead of unmapping it. Reads
// or writes through stale slices then fault deterministically; combine with
// debug.SetPanicOnFault to observe them. The address space is never
// returned, so use it for instrumented builds and tests only.
func WithGuardedRelease() Option {
	return func(o *options) {
		o.guarded = true
	}
}

// WithMemoryAcquirer charges every commit against acquirer.
// A refused charge is a commit failure.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acquirer
	}
}

// WithObserver registers an observer for commit lifecycle events.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithLogger sets the logger. Commits are logged at debug level, fatal
// failures at error level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFatalHandler replaces the default fatal handler (log and exit).
func WithFatalHandler(h FatalHandler) Option {
	return func(o *options) {
		o.fatal = h
	}
}

func buildOptions(opts []Option) options {
	o := options{alignment: DefaultAlignment}
	for _, opt := range opts {
		opt(&o)
	}

	if o.fatal == nil {
		// A fatal failure is reported even when no logger was configured.
		fatalLogger := o.logger
		if fatalLogger == nil {
			fatalLogger = slog.Default()
		}
		o.fatal = exitFatal(fatalLogger)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func exitFatal(logger *slog.Logger) FatalHandler {
	return func(err error) {
		logger.Error("arena: fatal allocation failure", "error", err)
		os.Exit(2)
	}
}
