package logger

import (
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string)
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Error(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Sync() error
}

type zapLogger struct {
	l *zap.SugaredLogger
}

func New(cfg config.Logger) (Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	output := cfg.Output
	if len(output) == 0 {
		output = []string{"stdout"}
	}

	errOutput := cfg.ErrOutput
	if len(errOutput) == 0 {
		errOutput = []string{"stderr"}
	}

	zc := zap.Config{ //nolint:exhaustruct
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(lvl),
		OutputPaths:      output,
		ErrorOutputPaths: errOutput,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger error: %w", err)
	}

	return &zapLogger{l: l.Sugar()}, nil
}

// Nop returns a logger that discards everything. For tests.
func Nop() Logger {
	return &zapLogger{l: zap.NewNop().Sugar()}
}

func (zl *zapLogger) Info(msg string) {
	zl.l.Info(msg)
}

func (zl *zapLogger) Infof(format string, args ...interface{}) {
	zl.l.Infof(format, args...)
}

func (zl *zapLogger) Warnf(format string, args ...interface{}) {
	zl.l.Warnf(format, args...)
}

func (zl *zapLogger) Error(format string, args ...interface{}) {
	zl.l.Errorf(format, args...)
}

func (zl *zapLogger) Errorf(format string, args ...interface{}) {
	zl.l.Errorf(format, args...)
}

func (zl *zapLogger) Sync() error {
	return zl.l.Sync() //nolint:wrapcheck
}
