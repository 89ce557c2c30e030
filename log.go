package libvisio

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards every record; Enabled returns false so
// callers skip formatting entirely. Mirrors gogpu/gg's logger.go, which
// gives a library the same "silent unless opted in" default a CLI tool
// gets for free from not calling a logging package at all.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler         { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler              { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the debug channel for the whole package. By
// default libvisio produces no log output. Pass nil to restore
// silence. Safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}

func debugf(msg string, args ...any) {
	logger().Debug(msg, args...)
}

func warnf(msg string, args ...any) {
	logger().Warn(msg, args...)
}
