package logthrottle

import (
	"strings"

	"go.uber.org/zap"
)

// SugaredLogger mirrors *zap.SugaredLogger for one message type.
// It shares its gate with the Logger it came from.
//
// The frequency suffix goes after the message for the plain and w variants,
// and after the template, before argument substitution, for the f variants.
type SugaredLogger struct {
	t    *Throttle
	gate *typeGate
	fwd  *zap.SugaredLogger
}

// Desugar returns the structured Logger of the same type.
func (s *SugaredLogger) Desugar() *Logger {
	return &Logger{t: s.t, gate: s.gate, fwd: s.fwd.Desugar()}
}

// With adds loosely typed key-value pairs to every reported entry.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{t: s.t, gate: s.gate, fwd: s.fwd.With(args...)}
}

func (s *SugaredLogger) Debug(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Debug(appendSuffix(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Info(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Info(appendSuffix(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Warn(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Warn(appendSuffix(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Error(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Error(appendSuffix(args, d.suffix)...)
	}
}

func (s *SugaredLogger) DPanic(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).DPanic(appendSuffix(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Debugf(template string, args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		template, args = annotateTemplate(template, args, d.suffix)
		s.target(d).Debugf(template, args...)
	}
}

func (s *SugaredLogger) Infof(template string, args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		template, args = annotateTemplate(template, args, d.suffix)
		s.target(d).Infof(template, args...)
	}
}

func (s *SugaredLogger) Warnf(template string, args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		template, args = annotateTemplate(template, args, d.suffix)
		s.target(d).Warnf(template, args...)
	}
}

func (s *SugaredLogger) Errorf(template string, args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		template, args = annotateTemplate(template, args, d.suffix)
		s.target(d).Errorf(template, args...)
	}
}

func (s *SugaredLogger) DPanicf(template string, args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		template, args = annotateTemplate(template, args, d.suffix)
		s.target(d).DPanicf(template, args...)
	}
}

func (s *SugaredLogger) Debugw(msg string, keysAndValues ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Debugw(d.annotate(msg), keysAndValues...)
	}
}

func (s *SugaredLogger) Infow(msg string, keysAndValues ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Infow(d.annotate(msg), keysAndValues...)
	}
}

func (s *SugaredLogger) Warnw(msg string, keysAndValues ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Warnw(d.annotate(msg), keysAndValues...)
	}
}

func (s *SugaredLogger) Errorw(msg string, keysAndValues ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Errorw(d.annotate(msg), keysAndValues...)
	}
}

func (s *SugaredLogger) DPanicw(msg string, keysAndValues ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).DPanicw(d.annotate(msg), keysAndValues...)
	}
}

func (s *SugaredLogger) Debugln(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Debugln(appendOperand(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Infoln(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Infoln(appendOperand(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Warnln(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Warnln(appendOperand(args, d.suffix)...)
	}
}

func (s *SugaredLogger) Errorln(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).Errorln(appendOperand(args, d.suffix)...)
	}
}

func (s *SugaredLogger) DPanicln(args ...any) {
	if d, ok := s.t.visit(s.gate); ok {
		s.target(d).DPanicln(appendOperand(args, d.suffix)...)
	}
}

func (s *SugaredLogger) target(d decision) *zap.SugaredLogger {
	if fields := s.t.countFieldsFor(d); fields != nil {
		return s.fwd.Desugar().With(fields...).Sugar()
	}
	return s.fwd
}

// appendSuffix adds suffix as a trailing operand. fmt.Sprint puts no space
// before a string operand, so the message reads the same as msg+suffix.
func appendSuffix(args []any, suffix string) []any {
	if suffix == "" {
		return args
	}
	return append(args[:len(args):len(args)], suffix)
}

// annotateTemplate appends suffix to template. zap formats an empty template
// with fmt.Sprint, so there the suffix goes after the operands instead.
func annotateTemplate(template string, args []any, suffix string) (string, []any) {
	if template == "" {
		return "", appendSuffix(args, suffix)
	}
	return template + suffix, args
}

// appendOperand is appendSuffix for the ln variants, where fmt.Sprintln
// already separates operands with a space.
func appendOperand(args []any, suffix string) []any {
	return appendSuffix(args, strings.TrimPrefix(suffix, " "))
}
