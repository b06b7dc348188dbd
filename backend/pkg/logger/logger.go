package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global *zap.Logger
)

// Init builds the process logger. env selects the production JSON
// encoder or the colored development encoder; level overrides the
// environment default when it parses ("debug", "info", "warn", ...).
func Init(env, level string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := config.Build()
	if err != nil {
		return err
	}

	Replace(built)
	return nil
}

// Replace swaps the process logger. Package tests install zap.NewNop()
// from TestMain.
func Replace(l *zap.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// Sync flushes any buffered log entries
func Sync() {
	if l := current(); l != nil {
		_ = l.Sync()
	}
}

// Get returns the process logger, falling back to a development logger
// when Init has not run yet
func Get() *zap.Logger {
	if l := current(); l != nil {
		return l
	}
	l, _ := zap.NewDevelopment()
	return l
}

// Named returns the process logger scoped to a component
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
