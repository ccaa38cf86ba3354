package logging

import (
	"context"
	"fmt"
	"os"
	"sync"
)

var (
	defaultLevel = INFO
	levelMu      sync.RWMutex
	// exitFunc is called by Fatal; tests replace it.
	exitFunc = os.Exit
)

// Logger is a named, leveled logger with persistent fields
type Logger struct {
	name   string
	fields []LogField
	ctx    context.Context
}

// Initialize sets the default level and optional per-package overrides.
// Unknown level names fall back to INFO.
func Initialize(levelStr string, packageLevels ...map[string]string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		level = INFO
	}
	levelMu.Lock()
	defaultLevel = level
	levelMu.Unlock()

	if len(packageLevels) > 0 && packageLevels[0] != nil {
		return SetPackageLogLevels(packageLevels[0])
	}
	return SetPackageLogLevels(nil)
}

// GetLogger returns a logger with the given name
func GetLogger(name string) *Logger {
	return &Logger{name: name}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) enabled(level LogLevel) bool {
	if override := GetPackageLogLevel(l.name); override >= 0 {
		return level >= override
	}
	levelMu.RLock()
	defer levelMu.RUnlock()
	return level >= defaultLevel
}

// IsDebugEnabled reports whether debug lines would be written
func (l *Logger) IsDebugEnabled() bool {
	return l.enabled(DEBUG)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.logf(DEBUG, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.logf(INFO, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logf(WARN, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.logf(ERROR, msg, args...)
}

// Fatal logs a message and exits with code 1
func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.enabled(FATAL) {
		l.logf(FATAL, msg, args...)
		exitFunc(1)
	}
}

// ErrorWithErr logs an error message followed by the error
func (l *Logger) ErrorWithErr(msg string, err error) {
	l.logWithFields(ERROR, msg, Field("error", err))
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	l.logWithFields(DEBUG, msg, fields...)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	l.logWithFields(INFO, msg, fields...)
}

// WarnWithFields logs a warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	l.logWithFields(WARN, msg, fields...)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	l.logWithFields(ERROR, msg, fields...)
}

// WithName returns a copy of the logger under a different name
func (l *Logger) WithName(name string) *Logger {
	return &Logger{name: name, fields: l.fields, ctx: l.ctx}
}

// WithField returns a child logger carrying an extra field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Field(key, value))
}

// WithFields returns a child logger carrying extra fields
func (l *Logger) WithFields(fields ...LogField) *Logger {
	merged := make([]LogField, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{name: l.name, fields: merged, ctx: l.ctx}
}

// WithContext returns a child logger that adds trace_id and span_id from ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{name: l.name, fields: l.fields, ctx: ctx}
}

func (l *Logger) logf(level LogLevel, msg string, args ...interface{}) {
	if !l.enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.write(level, msg, nil)
}

func (l *Logger) logWithFields(level LogLevel, msg string, fields ...LogField) {
	if !l.enabled(level) {
		return
	}
	l.write(level, msg, fields)
}
