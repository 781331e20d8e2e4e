package logger

import (
	"context"
	"log/slog"
	"os"
)

var (
	globalLogger *slog.Logger
	errorLogger  *slog.Logger
	verboseMode  bool
)

// Init initializes the global logger. In verbose mode all levels are written
// to stderr; otherwise only errors are emitted so command output stays clean
// for piping.
func Init(verbose bool) {
	verboseMode = verbose

	errorLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	if verbose {
		globalLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		globalLogger = slog.New(&silentHandler{})
	}
	slog.SetDefault(globalLogger)
}

// silentHandler discards all log records when verbose mode is disabled.
type silentHandler struct{}

func (h *silentHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (h *silentHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h *silentHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return h }
func (h *silentHandler) WithGroup(_ string) slog.Handler               { return h }

func ensureInit() {
	if globalLogger == nil {
		Init(false)
	}
}

// Debug logs a debug message in verbose mode.
func Debug(msg string, args ...any) {
	ensureInit()
	globalLogger.Debug(msg, args...)
}

// Info logs an info message in verbose mode.
func Info(msg string, args ...any) {
	ensureInit()
	globalLogger.Info(msg, args...)
}

// Warn logs a warning in verbose mode.
func Warn(msg string, args ...any) {
	ensureInit()
	globalLogger.Warn(msg, args...)
}

// Error logs an error regardless of verbose mode.
func Error(msg string, args ...any) {
	ensureInit()
	if verboseMode {
		globalLogger.Error(msg, args...)
		return
	}
	errorLogger.Error(msg, args...)
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	return verboseMode
}
