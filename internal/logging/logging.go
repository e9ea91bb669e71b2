package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogFile = "itree.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	logger       *zap.Logger
	level        = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// L returns the shared logger, opening the log file on first use so that a
// run which logs nothing leaves no file behind.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		l, err := build(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
			l = zap.NewNop()
		}
		logger = l
	}
	return logger
}

func build(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build(zap.AddCallerSkip(1))
}

// UseLogger swaps the shared logger, returning a func that restores the
// previous one.
func UseLogger(l *zap.Logger) func() {
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	L().Error(err.Error(), zap.Error(err))
}

// Info logs an informational message.
func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

// Warn logs a warning.
func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// TraceEnabled reports whether trace entries are being written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace records a debug entry named after event when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	L().Debug(event, zap.Any("payload", payload))
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Sync flushes buffered entries.
func Sync() {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}
