// Package logger provides a simple wrapper around slog for structured logging.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu sync.RWMutex

	// Logger is the global logger instance.
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// SetOutput redirects all logging to w. The TUI runs on the alternate
// screen, so interactive mode points this at a file instead of stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	Logger = slog.New(slog.NewTextHandler(w, nil))
}

// Error logs an error message.
func Error(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	Logger.Debug(msg, args...)
}
