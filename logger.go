package nucleus

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with nucleus-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithArena adds the arena geometry to the logger.
func (l *Logger) WithArena(reserved, granularity int) *Logger {
	return &Logger{
		Logger: l.Logger.With("reserved", reserved, "granularity", granularity),
	}
}

// WithRun tags every record with a run name.
func (l *Logger) WithRun(run string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", run),
	}
}

// LogReset logs an arena reset between training steps.
func (l *Logger) LogReset(ctx context.Context, discarded, committed int) {
	l.DebugContext(ctx, "workspace reset",
		"discarded", discarded,
		"committed", committed,
	)
}

// LogCheckpoint logs a checkpoint save or load.
func (l *Logger) LogCheckpoint(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"op", op,
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint completed",
			"op", op,
			"name", name,
		)
	}
}

// LogClose logs the final arena statistics.
func (l *Logger) LogClose(ctx context.Context, peak, commits int, err error) {
	if err != nil {
		l.WarnContext(ctx, "workspace closed with error",
			"peak", peak,
			"commits", commits,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "workspace closed",
			"peak", peak,
			"commits", commits,
		)
	}
}
