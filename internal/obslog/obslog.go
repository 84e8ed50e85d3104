// Package obslog provides the checker's internal structured tracing: pass
// boundaries, instantiation cache hits, deferred-insertion commits. It is
// not the diagnostics channel (internal/diagnostics is, and is what
// embedders and end users actually see) — obslog is purely a build-time
// observability aid, nil-safe by default so library consumers never get
// unsolicited stderr output.
package obslog

import "go.uber.org/zap"

// Logger wraps *zap.SugaredLogger so callers can pass a nil *Logger and
// every method becomes a no-op, matching the teacher's pattern of
// optional, injectable collaborators (ModuleLoader, etc.) defaulting to
// harmless behavior when unset.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New wraps an existing zap logger. Passing nil yields a no-op Logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		return nil
	}
	return &Logger{sugar: z.Sugar()}
}

// NewNop returns a Logger that discards everything, used as the checker's
// default when no logger is configured.
func NewNop() *Logger {
	return New(zap.NewNop())
}

func (l *Logger) Debugw(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Debugw(msg, kv...)
}

func (l *Logger) Infow(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Infow(msg, kv...)
}

func (l *Logger) Warnw(msg string, kv ...any) {
	if l == nil {
		return
	}
	l.sugar.Warnw(msg, kv...)
}
