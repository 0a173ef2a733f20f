package alog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/alog/destination"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, int64(4096), cfg.QueueSize)
	assert.Equal(t, int64(1000), cfg.MaxWritesSinceReopen)
	assert.Equal(t, int64(30_000_000), cfg.MaxOpenAgeUs)
	assert.Equal(t, int64(0o022), cfg.FileMask)
	assert.Equal(t, "15:04:05.000000", cfg.TimestampFormat)
	assert.True(t, cfg.ReportOverflow)
	assert.Zero(t, cfg.HeartbeatIntervalS)
	assert.Equal(t, "info", cfg.HeartbeatLevel)
	assert.True(t, cfg.InternalErrorsToStderr)
	assert.Empty(t, cfg.Info)
	assert.NoError(t, cfg.Validate())

	// Each call returns an independent copy
	cfg.QueueSize = 1
	assert.Equal(t, int64(4096), DefaultConfig().QueueSize)
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.QueueSize = 64
	cfg1.Debug = "enabled, stdout"

	cfg2 := cfg1.Clone()

	assert.Equal(t, cfg1.QueueSize, cfg2.QueueSize)
	assert.Equal(t, cfg1.Debug, cfg2.Debug)

	cfg1.Debug = "disabled"
	assert.Equal(t, "enabled, stdout", cfg2.Debug)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "zero queue size",
			modify:    func(c *Config) { c.QueueSize = 0 },
			wantError: "queue_size must be between",
		},
		{
			name:      "huge queue size",
			modify:    func(c *Config) { c.QueueSize = 1 << 30 },
			wantError: "queue_size must be between",
		},
		{
			name:      "zero write count",
			modify:    func(c *Config) { c.MaxWritesSinceReopen = 0 },
			wantError: "max_writes_since_reopen must be positive",
		},
		{
			name:      "negative open age",
			modify:    func(c *Config) { c.MaxOpenAgeUs = -1 },
			wantError: "max_open_age_us must be positive",
		},
		{
			name:      "mask out of range",
			modify:    func(c *Config) { c.FileMask = 0o1000 },
			wantError: "file_mask must be between",
		},
		{
			name:      "empty timestamp format",
			modify:    func(c *Config) { c.TimestampFormat = " " },
			wantError: "timestamp_format cannot be empty",
		},
		{
			name:      "negative heartbeat interval",
			modify:    func(c *Config) { c.HeartbeatIntervalS = -5 },
			wantError: "heartbeat_interval_s cannot be negative",
		},
		{
			name:      "invalid heartbeat level",
			modify:    func(c *Config) { c.HeartbeatLevel = "loud" },
			wantError: "invalid heartbeat_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestConfigLevels(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetLevel(LevelDebugHard, "enabled, stdout"))
	assert.Equal(t, "enabled, stdout", cfg.DebugHard)
	assert.Equal(t, "enabled, stdout", cfg.Level(LevelDebugHard))

	assert.Error(t, cfg.SetLevel(Severity(8), "enabled"))
	assert.Empty(t, cfg.Level(Severity(-1)))
}

func TestConfigTableOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOpenAgeUs = 1500
	cfg.FileMask = 0o077

	opts := cfg.tableOptions()
	assert.Equal(t, uint64(1000), opts.MaxWritesSinceReopen)
	assert.Equal(t, 1500*time.Microsecond, opts.MaxOpenAge)
	assert.Equal(t, os.FileMode(0o077), opts.FileMask)
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"queue_size":      int64(512),
		"report_overflow": false,
		"info":            "enabled, stdout",
		"max_open_age_us": 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(512), cfg.QueueSize)
	assert.False(t, cfg.ReportOverflow)
	assert.Equal(t, "enabled, stdout", cfg.Info)
	assert.Equal(t, int64(1000), cfg.MaxOpenAgeUs)

	_, err = NewConfigFromDefaults(map[string]any{"no_such_key": 1})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"queue_size": "big"})
	assert.Error(t, err)

	_, err = NewConfigFromDefaults(map[string]any{"queue_size": int64(0)})
	assert.Error(t, err)
}

func TestNewConfigFromFile(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("values from alog table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		content := `
[alog]
queue_size = 2048
report_overflow = false
timestamp_format = "15:04:05"
debug = "enabled, no_ansi_colors, stdout"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, int64(2048), cfg.QueueSize)
		assert.False(t, cfg.ReportOverflow)
		assert.Equal(t, "15:04:05", cfg.TimestampFormat)
		assert.Equal(t, "enabled, no_ansi_colors, stdout", cfg.Debug)
		assert.Equal(t, int64(1000), cfg.MaxWritesSinceReopen)

		s := destination.ParseSettings(cfg.Debug, true)
		assert.Equal(t, destination.Stdout, s.Kind)
		assert.False(t, s.ANSIColors)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[alog]\nmax_writes_since_reopen = 0\n"), 0o644))

		_, err := NewConfigFromFile(path)
		assert.Error(t, err)
	})
}
