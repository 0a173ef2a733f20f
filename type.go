package alog

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/alog/destination"
)

var severityNames = [LevelCount]string{
	"critical", "error", "warning", "info", "profile", "debug", "debug_hard", "debug_mare",
}

var severityShort = [LevelCount]string{
	"CRIT", "ERRR", "WARN", "INFO", "PROF", "DEBG", "DBHR", "DBMR",
}

var severityColor = [LevelCount]int{
	criticalColor, errorColor, warningColor, infoColor,
	profileColor, debugColor, debugHardColor, debugMareColor,
}

// Valid reports whether s is one of the defined levels
func (s Severity) Valid() bool {
	return s >= LevelCritical && s <= LevelDebugMare
}

// String returns the configuration name of the level, e.g. "debug_hard"
func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// Short returns the four-letter tag written in log lines
func (s Severity) Short() string {
	if !s.Valid() {
		return "????"
	}
	return severityShort[s]
}

// ParseSeverity converts a level name or short tag to a Severity
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := 0; i < LevelCount; i++ {
		if name == severityNames[i] || name == strings.ToLower(severityShort[i]) {
			return Severity(i), nil
		}
	}
	switch name {
	case "warn":
		return LevelWarning, nil
	case "crit", "fatal":
		return LevelCritical, nil
	}
	return 0, fmtErrorf("invalid level string: '%s' (use critical, error, warning, info, profile, debug, debug_hard, debug_mare)", name)
}

// levelTable is the producer-side snapshot of every level's settings
type levelTable [LevelCount]destination.Settings

// recordKind distinguishes log payloads from in-band control messages
type recordKind uint8

const (
	kindLog recordKind = iota
	kindConfigure
	kindOptions
	kindFlush
	kindEOF
)

// record is the unit moved through the hand-off queue
type record struct {
	kind     recordKind
	level    Severity
	payload  []byte
	settings destination.Settings // kindConfigure
	options  destination.Options  // kindOptions
	done     chan struct{}        // kindFlush, kindConfigure, kindOptions
}

// pinned records are never evicted by queue overflow
func pinned(r *record) bool {
	return r.kind != kindLog
}
