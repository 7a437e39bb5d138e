package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, printf-style logging throughout the application.
// It wraps a zap logger so HTTP middleware can share the same sink.
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewLogger creates a console Logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func NewLogger(level string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewExample()
	}
	return FromZap(base)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return FromZap(zap.NewNop())
}

// FromZap wraps an existing zap logger.
func FromZap(base *zap.Logger) *Logger {
	return &Logger{base: base, sugar: base.Sugar()}
}

// Zap exposes the structured logger for components that want fields.
func (l *Logger) Zap() *zap.Logger { return l.base }

func (l *Logger) Info(format string, args ...any) { l.sugar.Infof(format, args...) }

func (l *Logger) Warn(format string, args ...any) { l.sugar.Warnf(format, args...) }

func (l *Logger) Error(format string, args ...any) { l.sugar.Errorf(format, args...) }

func (l *Logger) Debug(format string, args ...any) { l.sugar.Debugf(format, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() { _ = l.base.Sync() }

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
