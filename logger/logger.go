// Package logger sets up the structured logger of the fxg command.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger, also installed as the slog default.
var L = slog.Default()

// ParseLevel returns the slog level named by s, and false if s is not a level name.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Init initializes the global logger with a text handler writing to stderr.
// Call this once at startup, after reading the flags.
func Init(level string) {
	InitWriter(os.Stderr, level)
}

// InitWriter is like Init but writes to w.
func InitWriter(w io.Writer, level string) {
	lvl, ok := ParseLevel(level)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// a CLI does not need timestamps on stderr.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
	L = slog.New(handler)
	slog.SetDefault(L)
	if !ok {
		L.Warn("invalid log level, defaulting to info", "level", level)
	}
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return L
}
