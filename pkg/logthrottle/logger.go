package logthrottle

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger mirrors the emitting surface of *zap.Logger for one message type.
// Each call counts as a visit of the type, whether or not the level is
// enabled, and reaches zap only when the throttle decides to report it.
//
// There is no Panic or Fatal: a suppressed call would return instead of
// panicking or exiting.
type Logger struct {
	t    *Throttle
	gate *typeGate
	fwd  *zap.Logger
}

// With returns a Logger of the same type that adds fields to every reported
// entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{t: l.t, gate: l.gate, fwd: l.fwd.With(fields...)}
}

// Sugar returns a sugared view of the same type.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{t: l.t, gate: l.gate, fwd: l.fwd.Sugar()}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	if d, ok := l.t.visit(l.gate); ok {
		l.target(d).Debug(d.annotate(msg), fields...)
	}
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	if d, ok := l.t.visit(l.gate); ok {
		l.target(d).Info(d.annotate(msg), fields...)
	}
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	if d, ok := l.t.visit(l.gate); ok {
		l.target(d).Warn(d.annotate(msg), fields...)
	}
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	if d, ok := l.t.visit(l.gate); ok {
		l.target(d).Error(d.annotate(msg), fields...)
	}
}

func (l *Logger) DPanic(msg string, fields ...zap.Field) {
	if d, ok := l.t.visit(l.gate); ok {
		l.target(d).DPanic(d.annotate(msg), fields...)
	}
}

// Log logs at lvl. With a panic or fatal level a reported entry panics or
// exits the way zap does; a suppressed one does nothing.
func (l *Logger) Log(lvl zapcore.Level, msg string, fields ...zap.Field) {
	if d, ok := l.t.visit(l.gate); ok {
		l.target(d).Log(lvl, d.annotate(msg), fields...)
	}
}

// Enabled reports whether the underlying logger emits entries at lvl.
// It does not count as a visit.
func (l *Logger) Enabled(lvl zapcore.Level) bool {
	return l.fwd.Core().Enabled(lvl)
}

// Level returns the minimum enabled level of the underlying logger.
func (l *Logger) Level() zapcore.Level {
	return l.fwd.Level()
}

// Name returns the underlying logger's name.
func (l *Logger) Name() string {
	return l.fwd.Name()
}

func (l *Logger) target(d decision) *zap.Logger {
	if fields := l.t.countFieldsFor(d); fields != nil {
		return l.fwd.With(fields...)
	}
	return l.fwd
}
