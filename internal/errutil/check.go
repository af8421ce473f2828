package errutil

import (
	"io"
	"log/slog"
)

// LogMsg logs the error with a custom message if it is not nil. Used on
// best-effort paths where a failure must not abort the caller.
func LogMsg(err error, msg string, args ...any) {
	if err != nil {
		allArgs := append([]any{"error", err}, args...)
		slog.Warn(msg, allArgs...)
	}
}

// ReportError logs an unexpected error.
// It funnels errors through a centralized reporting mechanism (currently slog).
func ReportError(err error, msg string, args ...any) {
	if err != nil {
		allArgs := append([]any{"error", err}, args...)
		slog.Error(msg, allArgs...)
	}
}

// Close closes c and logs any failure. Meant for defers, where a close error
// has nowhere useful to go.
func Close(c io.Closer, msg string, args ...any) {
	LogMsg(c.Close(), msg, args...)
}
