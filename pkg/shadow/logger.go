package shadow

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger used by the shadow pipeline and the
// packages built on it. By default no output is produced. Pass nil to
// restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: pipeline stage transitions, per-instance counts
//   - [slog.LevelWarn]: recovered geometry failures (skipped edges,
//     dropped loops, non-manifold edges)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current pipeline logger. Sibling packages (scene,
// scenescript, export) call this to share one configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
