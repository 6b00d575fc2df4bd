package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Log levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	levelNames = map[int]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
	}

	// INFO unless ENV=development or LOG_LEVEL says otherwise
	minLevel atomic.Int32
)

// Logger prefixes every line with its level and component
type Logger struct {
	component string
}

func init() {
	minLevel.Store(LevelInfo)
	if os.Getenv("ENV") == "development" {
		minLevel.Store(LevelDebug)
	}
	if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
		minLevel.Store(int32(lvl))
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
}

// New creates a new logger for a specific component
func New(component string) *Logger {
	return &Logger{component: component}
}

// ParseLevel maps debug|info|warn|error to a level
func ParseLevel(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// SetMinLevel allows changing the minimum log level at runtime
func SetMinLevel(level int) {
	minLevel.Store(int32(level))
}

// MinLevel returns the current minimum level
func MinLevel() int {
	return int(minLevel.Load())
}

// SetOutput redirects all component loggers
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func (l *Logger) logf(level int, format string, args ...interface{}) {
	if level < MinLevel() {
		return
	}

	prefix := fmt.Sprintf("[%s][%s] ", levelNames[level], l.component)
	log.Printf(prefix+format, args...)
}

// Debug logs debug information
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

// Info logs information messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}
