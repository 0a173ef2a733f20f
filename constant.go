package alog

import (
	"time"
)

// Severity is the ordered log level. The numeric value indexes per-level
// tables and must stay stable.
type Severity int

// Severity levels, increasing verbosity
const (
	LevelCritical Severity = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelProfile
	LevelDebug
	LevelDebugHard
	LevelDebugMare
)

// LevelCount is the number of severities
const LevelCount = int(LevelDebugMare) + 1

// Defaults
const (
	DefaultQueueSize            = 4096
	DefaultMaxWritesSinceReopen = 1000
	DefaultMaxOpenAgeUs         = 30_000_000
	DefaultFileMask             = 0o022
	DefaultTimestampFormat      = "15:04:05.000000"
)

// ANSI 256-colour codes
const (
	dateColor       = 238
	criticalColor   = 124
	errorColor      = 124
	warningColor    = 184
	infoColor       = 112
	profileColor    = 135
	debugColor      = 130
	debugHardColor  = 131
	debugMareColor  = 133
	ansiReset       = "\033[m"
	ansiColorFormat = "\033[38;5;%dm"
)

// Timers
const (
	// Stop timeout when none is given
	defaultStopTimeout = 2 * time.Second
)

// Call depth from a Logger level method to the application
const callerDepth = 3
