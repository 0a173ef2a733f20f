package destination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Settings
	}{
		{
			name: "disabled",
			text: "disabled",
			want: Settings{Kind: Stderr},
		},
		{
			name: "empty keeps defaults",
			text: "",
			want: Settings{Kind: Stderr, ANSIColors: true},
		},
		{
			name: "file with path",
			text: `enabled, no_ansi_colors, file "/var/log/app.log"`,
			want: Settings{Enabled: true, Kind: File, Path: "/var/log/app.log"},
		},
		{
			name: "bare path implies file",
			text: `"/tmp/x.log"`,
			want: Settings{Enabled: true, ANSIColors: true, Kind: File, Path: "/tmp/x.log"},
		},
		{
			name: "file without path is devnull",
			text: "file",
			want: Settings{Enabled: true, ANSIColors: true, Kind: Discard},
		},
		{
			name: "stdout with location",
			text: "stdout with_location",
			want: Settings{Enabled: true, ANSIColors: true, ShowLocation: true, Kind: Stdout},
		},
		{
			name: "later token wins",
			text: "stdout, stderr, disabled",
			want: Settings{Kind: Stderr, ANSIColors: true},
		},
		{
			name: "tokens inside path are not interpreted",
			text: `file "/logs/disabled/stdout.log"`,
			want: Settings{Enabled: true, ANSIColors: true, Kind: File, Path: "/logs/disabled/stdout.log"},
		},
		{
			name: "unknown text ignored",
			text: "verbose please, devnull",
			want: Settings{Enabled: true, ANSIColors: true, Kind: Discard},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSettings(tt.text, true))
		})
	}
}

func TestSettingsStringRoundTrip(t *testing.T) {
	for _, s := range []Settings{
		{Enabled: true, ANSIColors: true, Kind: Stderr},
		{Enabled: true, ShowLocation: true, Kind: Stdout},
		{Enabled: true, Kind: File, Path: "/tmp/a b.log"},
		{Enabled: true, Kind: Discard},
	} {
		assert.Equal(t, s, ParseSettings(s.String(), !s.ANSIColors), s.String())
	}
	assert.Equal(t, "disabled", Settings{Kind: File, Path: "/x"}.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "stderr", Stderr.String())
	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "file", File.String())
	assert.Equal(t, "devnull", Discard.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
