package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a Logger at info level writing to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a Logger for the given level name
// ("debug", "info", "warn", "error"). Unknown names fall back to info.
func NewLoggerWithLevel(level string) *Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)

	atom := zap.NewAtomicLevelAt(lvl)
	below := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atom.Enabled(l) && l < zapcore.ErrorLevel
	})
	above := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atom.Enabled(l) && l >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), below),
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), above),
	)
	return &Logger{sugar: zap.New(core).Sugar()}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	if err := l.sugar.Sync(); err != nil && !isStdSyncErr(err) {
		return fmt.Errorf("logger: sync: %w", err)
	}
	return nil
}

// Syncing stdout/stderr fails with EINVAL/ENOTTY on most terminals.
func isStdSyncErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
