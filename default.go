package alog

import (
	"time"

	"github.com/lixenwraith/alog/destination"
)

// Global instance for package-level functions
var defaultLogger = NewLogger()

// Default package-level functions that delegate to the default logger.
// The default logger has an explicit lifecycle: nothing is written before
// Init and records still queued are flushed by Shutdown.

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger
}

// Init applies cfg to the default logger and starts it
func Init(cfg *Config) error {
	if err := defaultLogger.ApplyConfig(cfg); err != nil {
		return err
	}
	return defaultLogger.Start()
}

// InitWithDefaults starts the default logger with built-in defaults and
// optional "key=value" overrides
func InitWithDefaults(overrides ...string) error {
	if err := defaultLogger.ApplyConfig(DefaultConfig()); err != nil {
		return err
	}
	if err := defaultLogger.ApplyConfigString(overrides...); err != nil {
		return err
	}
	return defaultLogger.Start()
}

// Shutdown stops the default logger, flushing pending records, and closes
// its destinations
func Shutdown(timeout ...time.Duration) error {
	return defaultLogger.Shutdown(timeout...)
}

// Critical logs a message at critical level
func Critical(args ...any) {
	defaultLogger.log(callerDepth, LevelCritical, false, args...)
}

// Error logs a message at error level
func Error(args ...any) {
	defaultLogger.log(callerDepth, LevelError, false, args...)
}

// Warning logs a message at warning level
func Warning(args ...any) {
	defaultLogger.log(callerDepth, LevelWarning, false, args...)
}

// Info logs a message at info level
func Info(args ...any) {
	defaultLogger.log(callerDepth, LevelInfo, false, args...)
}

// Profile logs a message at profile level
func Profile(args ...any) {
	defaultLogger.log(callerDepth, LevelProfile, false, args...)
}

// Debug logs a message at debug level
func Debug(args ...any) {
	defaultLogger.log(callerDepth, LevelDebug, false, args...)
}

// DebugHard logs a message at debug_hard level
func DebugHard(args ...any) {
	defaultLogger.log(callerDepth, LevelDebugHard, false, args...)
}

// DebugMare logs a message at debug_mare level
func DebugMare(args ...any) {
	defaultLogger.log(callerDepth, LevelDebugMare, false, args...)
}

// Log logs a message at the given level
func Log(level Severity, args ...any) {
	defaultLogger.log(callerDepth, level, false, args...)
}

// Multiline logs a message keeping its line breaks
func Multiline(level Severity, args ...any) {
	defaultLogger.log(callerDepth, level, true, args...)
}

// Submit hands a finished payload to the default logger
func Submit(level Severity, payload []byte) bool {
	return defaultLogger.Submit(level, payload)
}

// Configure replaces the settings of one level of the default logger
func Configure(level Severity, s destination.Settings) error {
	return defaultLogger.Configure(level, s)
}

// ConfigureString configures a level of the default logger from compact text
func ConfigureString(level Severity, settings string) error {
	return defaultLogger.ConfigureString(level, settings)
}

// Flush waits until records submitted to the default logger are written
func Flush(timeout time.Duration) error {
	return defaultLogger.Flush(timeout)
}

// Timer returns a named profile timer of the default logger
func Timer(name string) *Timer {
	return defaultLogger.Timer(name)
}

// GetStats returns the default logger's counters
func GetStats() Stats {
	return defaultLogger.Stats()
}
