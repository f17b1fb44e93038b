// Package zaplog builds zap loggers and exposes them through the Nakama runtime.Logger interface
// so the game engine logs the same way inside and outside the Nakama server.
package zaplog

import (
	"fmt"
	"os"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings.
type Config struct {
	Level    string // debug, info, warn, error
	Encoding string // json or console
}

// New builds a zap.Logger writing to stdout.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	name := strings.ToLower(cfg.Level)
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "json" {
		encoding = "console"
	}

	logger, err := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// RuntimeLogger adapts a zap logger to runtime.Logger.
type RuntimeLogger struct {
	sugar  *zap.SugaredLogger
	fields map[string]interface{}
}

var _ runtime.Logger = (*RuntimeLogger)(nil)

// NewRuntimeLogger wraps l. A nil logger discards everything.
func NewRuntimeLogger(l *zap.Logger) *RuntimeLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &RuntimeLogger{sugar: l.Sugar(), fields: map[string]interface{}{}}
}

func (r *RuntimeLogger) Debug(format string, v ...interface{}) { r.sugar.Debugf(format, v...) }
func (r *RuntimeLogger) Info(format string, v ...interface{})  { r.sugar.Infof(format, v...) }
func (r *RuntimeLogger) Warn(format string, v ...interface{})  { r.sugar.Warnf(format, v...) }
func (r *RuntimeLogger) Error(format string, v ...interface{}) { r.sugar.Errorf(format, v...) }

func (r *RuntimeLogger) WithField(key string, v interface{}) runtime.Logger {
	return r.WithFields(map[string]interface{}{key: v})
}

func (r *RuntimeLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	args := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		merged[k] = v
		args = append(args, k, v)
	}
	return &RuntimeLogger{sugar: r.sugar.With(args...), fields: merged}
}

func (r *RuntimeLogger) Fields() map[string]interface{} {
	return r.fields
}
