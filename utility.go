package alog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Errors returned by lifecycle calls, wrapped with context
var (
	ErrNotInitialized = errors.New("alog: logger not initialized, call ApplyConfig first")
	ErrNotStarted     = errors.New("alog: logger not started")
	ErrStopTimeout    = errors.New("alog: delivery goroutine did not exit within timeout")
	ErrFlushTimeout   = errors.New("alog: timeout waiting for flush confirmation")
)

// errProcessorBusy is returned while a goroutine from a timed-out stop still
// owns the destination table
var errProcessorBusy = fmt.Errorf("%w: delivery goroutine from previous start still running", ErrStopTimeout)

// getLocation returns "file.go:line" for the frame skip levels up
func getLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???:0"
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "alog: ") {
		format = "alog: " + format
	}
	return fmt.Errorf(format, args...)
}

// parseKeyValue splits a "key=value" string
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// internalLog writes logger diagnostics to the fallback stream, if enabled
func (l *Logger) internalLog(format string, args ...any) {
	if !l.getConfig().InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, "alog: ") {
		format = "alog: " + format
	}

	var w io.Writer = os.Stderr
	if l.errOut != nil {
		w = l.errOut
	}
	fmt.Fprintf(w, format, args...)
}
