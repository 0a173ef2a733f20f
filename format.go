package alog

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/alog/destination"
)

// dumper renders values the type switch does not cover
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// formatter renders a finished log line on the producer goroutine. It is
// immutable; a timestamp format change swaps in a new one.
type formatter struct {
	timestampFormat string
}

func newFormatter(timestampFormat string) *formatter {
	return &formatter{timestampFormat: timestampFormat}
}

// format lays out one line:
//
//	[date colour]TIME [LOCATION ][level colour]TAG MESSAGE[reset]\n
//
// Single-line messages have control bytes replaced with spaces. Multiline
// messages keep their line breaks and continuation lines are indented to the
// visible width of the prefix.
func (f *formatter) format(now time.Time, level Severity, s destination.Settings, location string, multiline bool, args []any) []byte {
	buf := make([]byte, 0, 128)

	if s.ANSIColors {
		buf = appendColor(buf, dateColor)
	}
	tsStart := len(buf)
	buf = now.AppendFormat(buf, f.timestampFormat)
	width := utf8.RuneCount(buf[tsStart:]) + 1
	buf = append(buf, ' ')

	if location != "" {
		buf = append(buf, location...)
		buf = append(buf, ' ')
		width += utf8.RuneCountInString(location) + 1
	}

	if s.ANSIColors {
		buf = appendColor(buf, severityColor[level])
	}
	buf = append(buf, level.Short()...)
	buf = append(buf, ' ')
	width += len(level.Short()) + 1

	msgStart := len(buf)
	buf = appendArgs(buf, args)
	if multiline {
		buf = indentLines(buf, msgStart, width)
	} else {
		sanitize(buf[msgStart:])
	}

	if s.ANSIColors {
		buf = append(buf, ansiReset...)
	}
	return append(buf, '\n')
}

func appendColor(buf []byte, code int) []byte {
	return fmt.Appendf(buf, ansiColorFormat, code)
}

// appendArgs writes args separated by single spaces
func appendArgs(buf []byte, args []any) []byte {
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = appendValue(buf, arg)
	}
	return buf
}

// appendValue converts any value to its text representation.
// Falls back to go-spew for types that are not explicitly supported.
func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int32:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint32:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Time:
		return val.AppendFormat(buf, time.RFC3339Nano)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	case []byte:
		return hex.AppendEncode(buf, val)
	default:
		var b bytes.Buffer
		dumper.Fdump(&b, val)
		return append(buf, bytes.TrimSpace(b.Bytes())...)
	}
}

// sanitize replaces control bytes with spaces in place
func sanitize(b []byte) {
	for i, c := range b {
		if c < 0x20 || c == 0x7f {
			b[i] = ' '
		}
	}
}

// indentLines rewrites buf[start:] so every line after the first is prefixed
// with width spaces. Trailing line breaks are dropped.
func indentLines(buf []byte, start, width int) []byte {
	msg := bytes.TrimRight(buf[start:], "\n")
	if bytes.IndexByte(msg, '\n') < 0 {
		buf = buf[:start+len(msg)]
		sanitize(buf[start:])
		return buf
	}

	lines := bytes.Split(bytes.Clone(msg), []byte{'\n'})
	buf = buf[:start]
	for i, line := range lines {
		if i > 0 {
			buf = append(buf, '\n')
			buf = append(buf, bytes.Repeat([]byte{' '}, width)...)
		}
		lineStart := len(buf)
		buf = append(buf, line...)
		sanitize(buf[lineStart:])
	}
	return buf
}
