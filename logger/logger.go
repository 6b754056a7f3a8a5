// Package logger builds the zap logger used by the server and CLI and points
// the slog default, used by the library packages, at the same level.
package logger

import (
	"io"
	"log/slog"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func parseLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func New(levelStr, format string) *zap.Logger {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(levelStr))
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func NewTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

func NewNoOpLogger() *zap.Logger {
	return zap.NewNop()
}

// SetupSlog installs a default slog logger writing to w at the given level.
func SetupSlog(w io.Writer, levelStr, format string) {
	var level slog.Level
	switch parseLevel(levelStr) {
	case zapcore.DebugLevel:
		level = slog.LevelDebug
	case zapcore.WarnLevel:
		level = slog.LevelWarn
	case zapcore.ErrorLevel:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
