// ABOUTME: Leveled key/value logging for background work
// ABOUTME: Wraps charmbracelet/log; CLI output for users stays on stdout via fmt
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})
)

// Init replaces the package logger. Verbose enables debug output; a nil
// writer means stderr.
func Init(verbose bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "amplify",
	})

	mu.Lock()
	logger = l
	mu.Unlock()
}

// Logger returns the current logger.
func Logger() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...any) *log.Logger {
	return Logger().With(keyvals...)
}

func Debug(msg string, keyvals ...any) {
	Logger().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	Logger().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	Logger().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	Logger().Error(msg, keyvals...)
}
