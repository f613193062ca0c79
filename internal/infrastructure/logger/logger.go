// Package logger internal/infrastructure/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the severity level of a log message
type Level string

const (
	// DebugLevel is used for development messages
	DebugLevel Level = "DEBUG"
	// InfoLevel is used for general operational information
	InfoLevel Level = "INFO"
	// WarnLevel is used for warnings and potential issues
	WarnLevel Level = "WARN"
	// ErrorLevel is used for errors and unexpected events
	ErrorLevel Level = "ERROR"
	// FatalLevel is used for critical errors that require termination
	FatalLevel Level = "FATAL"
)

// ParseLevel converts a configured level name (any case) into a Level
func ParseLevel(name string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(name))) {
	case DebugLevel:
		return DebugLevel, nil
	case InfoLevel, "":
		return InfoLevel, nil
	case WarnLevel, "WARNING":
		return WarnLevel, nil
	case ErrorLevel:
		return ErrorLevel, nil
	case FatalLevel:
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", name)
	}
}

// Logger defines the interface for the application logger
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// JSONLogger is a logger that outputs structured JSON logs, one object per line
type JSONLogger struct {
	zl    zerolog.Logger
	level Level
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(output io.Writer, level Level) *JSONLogger {
	if output == nil {
		output = os.Stdout
	}

	return &JSONLogger{
		zl:    zerolog.New(output),
		level: level,
	}
}

// WithField returns a new logger with the field added to the log context
func (l *JSONLogger) WithField(key string, value interface{}) Logger {
	return &JSONLogger{
		zl:    l.zl.With().Interface(key, value).Logger(),
		level: l.level,
	}
}

// WithFields returns a new logger with the fields added to the log context
func (l *JSONLogger) WithFields(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return l
	}

	return &JSONLogger{
		zl:    l.zl.With().Fields(fields).Logger(),
		level: l.level,
	}
}

// Debug logs a message at debug level
func (l *JSONLogger) Debug(msg string, fields map[string]interface{}) {
	if l.shouldLog(DebugLevel) {
		l.log(DebugLevel, msg, fields)
	}
}

// Info logs a message at info level
func (l *JSONLogger) Info(msg string, fields map[string]interface{}) {
	if l.shouldLog(InfoLevel) {
		l.log(InfoLevel, msg, fields)
	}
}

// Warn logs a message at warn level
func (l *JSONLogger) Warn(msg string, fields map[string]interface{}) {
	if l.shouldLog(WarnLevel) {
		l.log(WarnLevel, msg, fields)
	}
}

// Error logs a message at error level
func (l *JSONLogger) Error(msg string, fields map[string]interface{}) {
	if l.shouldLog(ErrorLevel) {
		l.log(ErrorLevel, msg, fields)
	}
}

// Fatal logs a message at fatal level and then terminates the program
func (l *JSONLogger) Fatal(msg string, fields map[string]interface{}) {
	if l.shouldLog(FatalLevel) {
		l.log(FatalLevel, msg, fields)
	}
	os.Exit(1)
}

// shouldLog determines if a message at the given level should be logged
func (l *JSONLogger) shouldLog(level Level) bool {
	// Order of severity: DEBUG < INFO < WARN < ERROR < FATAL
	switch l.level {
	case DebugLevel:
		return true
	case InfoLevel:
		return level != DebugLevel
	case WarnLevel:
		return level != DebugLevel && level != InfoLevel
	case ErrorLevel:
		return level == ErrorLevel || level == FatalLevel
	case FatalLevel:
		return level == FatalLevel
	default:
		return true
	}
}

// log writes one record. Level filtering is done by shouldLog, so the
// zerolog event is created without a level of its own. It must be called
// directly from a Logger method or a package-level helper: the reported
// file and line are two frames up.
func (l *JSONLogger) log(level Level, msg string, fields map[string]interface{}) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}

	event := l.zl.Log().
		Str("timestamp", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("level", string(level)).
		Str("file", file).
		Int("line", line)

	if len(fields) > 0 {
		event = event.Fields(fields)
	}

	event.Msg(msg)
}

// Default logger instances
var (
	defaultLogger = NewJSONLogger(os.Stdout, InfoLevel)
)

// GetDefaultLogger returns the default logger
func GetDefaultLogger() Logger {
	return defaultLogger
}

// SetDefaultLogger sets the default logger
func SetDefaultLogger(logger Logger) {
	if l, ok := logger.(*JSONLogger); ok {
		defaultLogger = l
	}
}

// Global logger functions. They call log directly so the reported caller
// is the code using the helper, not this file.

// Debug logs through the default logger at debug level
func Debug(msg string, fields map[string]interface{}) {
	if defaultLogger.shouldLog(DebugLevel) {
		defaultLogger.log(DebugLevel, msg, fields)
	}
}

// Info logs through the default logger at info level
func Info(msg string, fields map[string]interface{}) {
	if defaultLogger.shouldLog(InfoLevel) {
		defaultLogger.log(InfoLevel, msg, fields)
	}
}

// Warn logs through the default logger at warn level
func Warn(msg string, fields map[string]interface{}) {
	if defaultLogger.shouldLog(WarnLevel) {
		defaultLogger.log(WarnLevel, msg, fields)
	}
}

// Error logs through the default logger at error level
func Error(msg string, fields map[string]interface{}) {
	if defaultLogger.shouldLog(ErrorLevel) {
		defaultLogger.log(ErrorLevel, msg, fields)
	}
}

// Fatal logs through the default logger and then terminates the program
func Fatal(msg string, fields map[string]interface{}) {
	if defaultLogger.shouldLog(FatalLevel) {
		defaultLogger.log(FatalLevel, msg, fields)
	}
	os.Exit(1)
}
