// Package logger builds the application's zap loggers. Output is JSON with an
// ISO8601 timestamp, and the level comes from LOG_LEVEL; debug surfaces the
// skipped-row and backend-fallback decisions made during ingestion and
// aggregation.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New instantiates a production-ready zap logger. An unset or unparseable
// LOG_LEVEL means info.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(levelFromEnv())

	return cfg.Build()
}

// Must is a helper that panics when the logger cannot be created.
func Must(logger *zap.Logger, err error) *zap.Logger {
	if err != nil {
		panic(err)
	}
	return logger
}

// Named returns a child logger with the provided component name.
func Named(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(component)
}

func levelFromEnv() zapcore.Level {
	var level zapcore.Level
	if err := level.Set(os.Getenv("LOG_LEVEL")); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
