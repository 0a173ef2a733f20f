// Package destination owns per-level output targets: it batches scheduled
// buffers, writes each level with one vectored write per flush pass, and
// reopens descriptors by write count or age so externally rotated files are
// picked up.
package destination

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects where a level's records go
type Kind int

const (
	Stderr Kind = iota
	Stdout
	File
	Discard
)

// String returns the compact token for the kind
func (k Kind) String() string {
	switch k {
	case Stderr:
		return "stderr"
	case Stdout:
		return "stdout"
	case File:
		return "file"
	case Discard:
		return "devnull"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Settings is the routing and rendering configuration of one level.
// ANSIColors and ShowLocation are consumed by the producer-side formatter.
type Settings struct {
	Enabled      bool
	ANSIColors   bool
	ShowLocation bool
	Kind         Kind
	Path         string
}

// String renders the settings in the compact text form accepted by ParseSettings
func (s Settings) String() string {
	if !s.Enabled {
		return "disabled"
	}
	parts := []string{"enabled"}
	if s.ANSIColors {
		parts = append(parts, "with_ansi_colors")
	} else {
		parts = append(parts, "no_ansi_colors")
	}
	if s.ShowLocation {
		parts = append(parts, "with_location")
	} else {
		parts = append(parts, "no_location")
	}
	if s.Kind == File {
		parts = append(parts, fmt.Sprintf("file %q", s.Path))
	} else {
		parts = append(parts, s.Kind.String())
	}
	return strings.Join(parts, ", ")
}

var settingsToken = regexp.MustCompile(`("[^"]*")|enabled|disabled|with_ansi_colors|` +
	`no_ansi_colors|with_location|no_location|stderr|stdout|devnull|file`)

// ParseSettings reads the compact form, e.g.
//
//	enabled, with_ansi_colors, file "/var/log/app.log"
//	no_ansi_colors, stderr
//	disabled
//
// Any recognized token other than "disabled" implies enabled. A quoted string
// selects a file destination with that path; "file" without a path becomes
// devnull. Unrecognized text is ignored. ansiDefault is used when no color
// token is present.
func ParseSettings(text string, ansiDefault bool) Settings {
	s := Settings{ANSIColors: ansiDefault, Kind: Stderr}
	for _, tok := range settingsToken.FindAllString(text, -1) {
		switch tok {
		case "enabled":
			s.Enabled = true
		case "disabled":
			s.Enabled = false
		case "with_ansi_colors":
			s.ANSIColors, s.Enabled = true, true
		case "no_ansi_colors":
			s.ANSIColors, s.Enabled = false, true
		case "with_location":
			s.ShowLocation, s.Enabled = true, true
		case "no_location":
			s.ShowLocation, s.Enabled = false, true
		case "stderr":
			s.Kind, s.Enabled = Stderr, true
		case "stdout":
			s.Kind, s.Enabled = Stdout, true
		case "devnull":
			s.Kind, s.Enabled = Discard, true
		case "file":
			s.Kind, s.Enabled = File, true
		default:
			s.Kind, s.Enabled = File, true
			s.Path = tok[1 : len(tok)-1]
		}
	}
	if s.Kind == File && s.Path == "" {
		s.Kind = Discard
	}
	return s
}
