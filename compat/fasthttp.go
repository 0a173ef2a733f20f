package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/alog"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter implements fasthttp.Logger on top of an alog.Logger.
// fasthttp has no levels, so the level is guessed from the message.
type FastHTTPAdapter struct {
	logger        *alog.Logger
	defaultLevel  alog.Severity
	levelDetector func(string) (alog.Severity, bool) // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *alog.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  alog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level alog.Severity) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) (alog.Severity, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.logger.LogDepth(1, level, "fasthttp:", msg)
}

// DetectLogLevel guesses a level from keywords in msg. ok is false when no
// keyword matched.
func DetectLogLevel(msg string) (level alog.Severity, ok bool) {
	msgLower := strings.ToLower(msg)

	switch {
	case strings.Contains(msgLower, "panic"),
		strings.Contains(msgLower, "fatal"):
		return alog.LevelCritical, true

	case strings.Contains(msgLower, "error"),
		strings.Contains(msgLower, "failed"):
		return alog.LevelError, true

	case strings.Contains(msgLower, "warn"),
		strings.Contains(msgLower, "deprecated"):
		return alog.LevelWarning, true

	case strings.Contains(msgLower, "debug"),
		strings.Contains(msgLower, "trace"):
		return alog.LevelDebug, true
	}

	return alog.LevelInfo, false
}
