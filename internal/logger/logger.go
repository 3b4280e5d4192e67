// Package logger builds the service's structured zap logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cybergodev/jwtdebug/internal/config"
)

// Logger is a zap logger with a runtime-adjustable level and an optional file sink.
type Logger struct {
	*zap.Logger
	Level zap.AtomicLevel

	sink io.Closer
}

// New creates a logger from cfg. Output goes to cfg.File through a rotating writer,
// or to stderr when no file is configured.
func New(cfg config.LogConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	l := &Logger{Level: level}

	var out zapcore.WriteSyncer
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		l.sink = rotating
		out = zapcore.AddSync(rotating)
	} else {
		out = zapcore.Lock(os.Stderr)
	}

	l.Logger = zap.New(zapcore.NewCore(encoder, out, level), zap.AddCaller())
	return l, nil
}

// ParseLevel turns a level name such as "debug" or "WARN" into an atomic level.
// An empty name means info.
func ParseLevel(name string) (zap.AtomicLevel, error) {
	if strings.TrimSpace(name) == "" {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
	}

	var parsed zapcore.Level
	if err := parsed.Set(strings.ToLower(strings.TrimSpace(name))); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return zap.NewAtomicLevelAt(parsed), nil
}

// Close flushes buffered entries and closes the file sink, if any.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}
