package logger

import (
	"os"

	"go.uber.org/zap"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type Log interface {
	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message string, args ...interface{})
	ErrorErr(message string, err error, args ...interface{})
	Fatal(message string, args ...interface{})
	FatalErr(message string, err error, args ...interface{})
}

type Logger struct {
	sugar *zap.SugaredLogger
}

func New(env string) *Logger {
	var cfg zap.Config

	switch env {
	case envLocal, envDev:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case envProd:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewProductionConfig()
	}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar()}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(args...)}
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(message string, args ...interface{}) {
	l.sugar.Debugw(message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.sugar.Infow(message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.sugar.Warnw(message, args...)
}

func (l *Logger) Error(message string, args ...interface{}) {
	l.sugar.Errorw(message, args...)
}

func (l *Logger) Fatal(message string, args ...interface{}) {
	l.sugar.Errorw("FATAL: "+message, args...)
	l.Sync()
	os.Exit(1)
}

func (l *Logger) ErrorErr(message string, err error, args ...interface{}) {
	l.sugar.Errorw(message, append(args, Err(err))...)
}

func (l *Logger) FatalErr(message string, err error, args ...interface{}) {
	l.sugar.Errorw("FATAL: "+message, append(args, Err(err))...)
	l.Sync()
	os.Exit(1)
}

func Err(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.Error(err)
}
