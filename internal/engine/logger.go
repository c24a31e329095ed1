// =============================================================================
// Finance Reconciler - Logger
// =============================================================================

package engine

import (
	"fmt"
	"os"
)

// Logger is the logging interface used by the engine.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// levels orders log levels from most to least verbose.
var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// stdLogger writes leveled messages to standard output and errors to
// standard error.
type stdLogger struct {
	threshold int
}

// NewLogger creates a logger that emits messages at or above the given
// level ("debug", "info", "warn", "error"). Unknown levels behave as
// "info".
func NewLogger(level string) Logger {
	threshold, ok := levels[level]
	if !ok {
		threshold = levels["info"]
	}
	return &stdLogger{threshold: threshold}
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	if l.threshold <= levels["debug"] {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	if l.threshold <= levels["info"] {
		fmt.Printf("[INFO] "+msg+"\n", args...)
	}
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	if l.threshold <= levels["warn"] {
		fmt.Printf("[WARN] "+msg+"\n", args...)
	}
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	if l.threshold <= levels["error"] {
		fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
	}
}
