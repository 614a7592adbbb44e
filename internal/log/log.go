// Package log provides the process-wide zap logger used by the engine, the
// CLI and the HTTP server.
package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// defaultOnce guards the production logger built when Init was never called.
var defaultOnce sync.Once

// Init initializes the package-level logger.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// UseNop discards all output. Tests call it to keep go test quiet.
func UseNop() {
	baseLogger = zap.NewNop()
	log = baseLogger.Sugar()
}

// Logger returns the base zap logger, creating a production one if Init was
// never called.
func Logger() *zap.Logger {
	sugared()
	return baseLogger
}

func sugared() *zap.SugaredLogger {
	defaultOnce.Do(func() {
		if log == nil {
			baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
			log = baseLogger.Sugar()
		}
	})
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debugf(template string, args ...interface{}) {
	sugared().Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	sugared().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...interface{}) {
	sugared().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	sugared().Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugared().Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	sugared().Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	sugared().Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	sugared().Errorw(msg, keysAndValues...)
}

func Fatalf(template string, args ...interface{}) {
	sugared().Fatalf(template, args...)
	os.Exit(1)
}
