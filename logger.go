package arenatree

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with arenatree-specific helpers.
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

// WithKey adds a storage key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// LogGrow logs a growth of the slot pool.
func (l *Logger) LogGrow(oldCap, newCap int) {
	l.Debug("arena grown",
		"old_capacity", oldCap,
		"new_capacity", newCap,
	)
}

// LogCopy logs a subtree copy.
func (l *Logger) LogCopy(src Token, nodes int) {
	l.Debug("subtree copied",
		"source", src.String(),
		"nodes", nodes,
	)
}

// LogSplit logs a subtree moved into a new arena.
func (l *Logger) LogSplit(t Token, nodes int) {
	l.Debug("subtree split",
		"token", t.String(),
		"nodes", nodes,
	)
}

// LogSnapshot logs a snapshot write.
func (l *Logger) LogSnapshot(ctx context.Context, key string, nodes int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"key", key,
			"error", err,
		)

		return
	}

	l.InfoContext(ctx, "snapshot saved",
		"key", key,
		"nodes", nodes,
		"bytes", bytes,
	)
}

// LogRestore logs a snapshot read.
func (l *Logger) LogRestore(ctx context.Context, key string, nodes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"key", key,
			"error", err,
		)

		return
	}

	l.InfoContext(ctx, "snapshot restored",
		"key", key,
		"nodes", nodes,
	)
}
