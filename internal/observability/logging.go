// Package observability provides structured logging and formatted CLI
// output for verbose mode.
package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production zap logger at the given level.
// Unknown level strings fall back to info.
func NewLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	z, err := cfg.Build()
	if err != nil {
		z, _ = zap.NewProduction()
	}
	return z
}

// NewDevLogger builds a human-readable console logger for verbose CLI runs.
func NewDevLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	z, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return z
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	case "panic":
		return zapcore.PanicLevel
	default:
		return zapcore.InfoLevel
	}
}
