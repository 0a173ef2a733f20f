package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/alog"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter implements gnet's logging.Logger on top of an alog.Logger
type GnetAdapter struct {
	logger       *alog.Logger
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *alog.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.LogDepth(1, alog.LevelDebug, "gnet:", fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.LogDepth(1, alog.LevelInfo, "gnet:", fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.LogDepth(1, alog.LevelWarning, "gnet:", fmt.Sprintf(format, args...))
}

func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.LogDepth(1, alog.LevelError, "gnet:", fmt.Sprintf(format, args...))
}

// Fatalf logs at critical level, flushes, and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.LogDepth(1, alog.LevelCritical, "gnet:", msg)

	// Ensure the record is written before exit
	_ = a.logger.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
