package alog

// Logger instance methods for logging at each level.
// Arguments are written space separated; composite values are dumped.

// Critical logs a message at critical level
func (l *Logger) Critical(args ...any) {
	l.log(callerDepth, LevelCritical, false, args...)
}

// Error logs a message at error level
func (l *Logger) Error(args ...any) {
	l.log(callerDepth, LevelError, false, args...)
}

// Warning logs a message at warning level
func (l *Logger) Warning(args ...any) {
	l.log(callerDepth, LevelWarning, false, args...)
}

// Info logs a message at info level
func (l *Logger) Info(args ...any) {
	l.log(callerDepth, LevelInfo, false, args...)
}

// Profile logs a message at profile level
func (l *Logger) Profile(args ...any) {
	l.log(callerDepth, LevelProfile, false, args...)
}

// Debug logs a message at debug level
func (l *Logger) Debug(args ...any) {
	l.log(callerDepth, LevelDebug, false, args...)
}

// DebugHard logs a message at debug_hard level
func (l *Logger) DebugHard(args ...any) {
	l.log(callerDepth, LevelDebugHard, false, args...)
}

// DebugMare logs a message at debug_mare level
func (l *Logger) DebugMare(args ...any) {
	l.log(callerDepth, LevelDebugMare, false, args...)
}

// Log logs a message at the given level
func (l *Logger) Log(level Severity, args ...any) {
	l.log(callerDepth, level, false, args...)
}

// Multiline logs a message keeping its line breaks. Continuation lines are
// indented to the width of the line prefix.
func (l *Logger) Multiline(level Severity, args ...any) {
	l.log(callerDepth, level, true, args...)
}

// LogDepth logs at level, attributing the location to the frame skip levels
// above the caller. Used by wrappers.
func (l *Logger) LogDepth(skip int, level Severity, args ...any) {
	l.log(callerDepth+skip, level, false, args...)
}
