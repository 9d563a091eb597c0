// Package logging is the ambient logging contract used across Aura: a
// small structured-logger interface so every component takes a Logger
// instead of reaching for a package-level global.
package logging

import "go.uber.org/zap"

// Logger is the structured logging contract every Aura component takes
// as a constructor argument. No package in this module keeps a
// package-level logger. effect.ProductionInterpreter also accepts a nil
// Logger and then logs nothing; NewNop gives an explicit no-op Logger.
type Logger interface {
	With(fields ...zap.Field) Logger
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

type zapLogger struct {
	l *zap.Logger
}

// NewZap wraps a *zap.Logger as a Logger.
func NewZap(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// NewProduction builds a production zap-backed Logger.
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewZap(l), nil
}

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }

// noop is the no-op logger used by tests and by simulation interpreters
// that record events themselves.
type noop struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger { return noop{} }

func (noop) With(...zap.Field) Logger        { return noop{} }
func (noop) Debug(string, ...zap.Field)      {}
func (noop) Info(string, ...zap.Field)       {}
func (noop) Warn(string, ...zap.Field)       {}
func (noop) Error(string, ...zap.Field)      {}
