// Package logger wraps zap with the field helpers used across StockPulse.
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured logging field.
type Field = zap.Field

// Logger is the application logger.
type Logger struct {
	*zap.Logger
}

// New builds a logger for the given level ("debug", "info", "warn", "error")
// and encoding ("console" or "json"). Logs go to stderr so that report output
// on stdout stays clean.
func New(level, encoding string) (*Logger, error) {
	return build(level, encoding, "stderr")
}

// NewToFile builds a logger like New that appends to path instead of stderr.
// Used while a full-screen UI owns the terminal.
func NewToFile(level, encoding, path string) (*Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	return build(level, encoding, path)
}

func build(level, encoding, output string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch encoding {
	case "", "text", "console":
		encoding = "console"
	case "json":
	default:
		return nil, fmt.Errorf("invalid log encoding %q", encoding)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = encoding
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{output}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.Sampling = nil

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{Logger: z}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a child logger scoped to a component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

func StringField(key, value string) Field { return zap.String(key, value) }

func IntField(key string, value int) Field { return zap.Int(key, value) }

func ErrorField(err error) Field { return zap.Error(err) }

func DurationField(key string, value time.Duration) Field { return zap.Duration(key, value) }

func BoolField(key string, value bool) Field { return zap.Bool(key, value) }
