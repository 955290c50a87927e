// Package logging builds the slog loggers used by mainspring programs and
// adapts them to the single-message error channel the engine reports to.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelFatal sits above slog.LevelError. Messages logged at this level are
// printed as FATAL.
const LevelFatal = slog.LevelError + 4

// ParseLevel maps debug, info, warn, error and fatal (case-insensitive) to a
// slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// LevelName is the inverse of ParseLevel.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelFatal:
		return "fatal"
	case l >= slog.LevelError:
		return "error"
	case l >= slog.LevelWarn:
		return "warn"
	case l >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// New creates a logger writing to w. format "json" selects the JSON handler,
// anything else the text handler. level may be a *slog.LevelVar so it can be
// changed after construction (e.g. by a --log-level flag).
func New(level slog.Leveler, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey || len(groups) > 0 {
				return a
			}
			if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelFatal {
				a.Value = slog.StringValue("FATAL")
			}
			return a
		},
	}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ErrorFunc returns the error-level channel for l: each call logs exactly msg
// at error level.
func ErrorFunc(l *slog.Logger) func(msg string) {
	return func(msg string) {
		if l == nil {
			return
		}
		l.Error(msg)
	}
}

// Fatal logs msg at LevelFatal.
func Fatal(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelFatal, msg, args...)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
