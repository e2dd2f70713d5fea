// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for repository and service logging.
var GlobalLogger = &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))}

// SetLogger replaces the logger used by RepoLogger and FanOutLogger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = &Logger{Logger: l}
	}
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

// LogDelete logs a cascading delete and how many dependent rows went with it.
func (l *RepoLogger) LogDelete(ctx context.Context, id uint, cascaded map[string]int64) {
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", "delete"),
		slog.Uint64("id", uint64(id)),
	}
	for table, rows := range cascaded {
		attrs = append(attrs, slog.Int64("cascaded_"+table, rows))
	}
	GlobalLogger.InfoContext(ctx, "repository delete", attrs...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	GlobalLogger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// LogFanOut records the outcome of one notification fan-out.
func LogFanOut(ctx context.Context, kind string, actorID uint, recipients int, err error) {
	attrs := []any{
		slog.String("type", kind),
		slog.Uint64("actor_id", uint64(actorID)),
		slog.Int("recipients", recipients),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		GlobalLogger.ErrorContext(ctx, "notification fan-out failed", attrs...)
		return
	}
	GlobalLogger.DebugContext(ctx, "notification fan-out", attrs...)
}
