package logger

import (
	"sync"

	"github.com/Indosaram/logxide/core"
	"github.com/Indosaram/logxide/dispatch"
)

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, creating it on first
// use with default dispatch settings.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry(dispatch.Config{})
	})
	return defaultReg
}

// GetLogger returns a logger from the default registry.
func GetLogger(name string) *Logger {
	return Default().GetLogger(name)
}

// Root returns the default registry's root logger.
func Root() *Logger {
	return Default().Root()
}

// BasicSetup applies a BasicConfig to the default registry.
func BasicSetup(cfg BasicConfig) error {
	return Default().Configure(cfg)
}

// Flush drains the default registry's pipeline and flushes its
// handlers.
func Flush() error {
	return Default().Flush()
}

// Shutdown drains and closes the default registry. Call it before
// process exit so buffered records reach their sinks.
func Shutdown() error {
	return Default().Shutdown()
}

// Package-level convenience functions log through the root logger.

// Debug logs a debug message on the root logger.
func Debug(msg string, args ...any) { Root().Debug(msg, args...) }

// Info logs an info message on the root logger.
func Info(msg string, args ...any) { Root().Info(msg, args...) }

// Warning logs a warning message on the root logger.
func Warning(msg string, args ...any) { Root().Warning(msg, args...) }

// Error logs an error message on the root logger.
func Error(msg string, args ...any) { Root().Error(msg, args...) }

// Critical logs a critical message on the root logger.
func Critical(msg string, args ...any) { Root().Critical(msg, args...) }

// Exception logs an error with exception info on the root logger.
func Exception(err error, msg string, args ...any) { Root().Exception(err, msg, args...) }

// SetGoroutineName labels the calling goroutine for the threadName
// record field.
func SetGoroutineName(name string) { core.SetGoroutineName(name) }

// GoroutineName returns the calling goroutine's label, "unnamed" if
// none was set.
func GoroutineName() string { return core.GoroutineName() }

// ClearGoroutineName removes the calling goroutine's label.
func ClearGoroutineName() { core.ClearGoroutineName() }
