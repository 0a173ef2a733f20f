package alog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/alog/destination"
)

func TestBuilder(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "app.log")

	logger, err := NewBuilder().
		QueueSize(1024).
		MaxWritesSinceReopen(50).
		MaxOpenAge(5*time.Second).
		FileMask(0o077).
		TimestampFormat(time.RFC3339).
		ReportOverflow(false).
		Heartbeat(2*time.Second, "profile").
		InternalErrorsToStderr(false).
		File(path, LevelInfo).
		Build()
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Shutdown()

	cfg := logger.GetConfig()
	assert.Equal(t, int64(1024), cfg.QueueSize)
	assert.Equal(t, int64(50), cfg.MaxWritesSinceReopen)
	assert.Equal(t, int64(5_000_000), cfg.MaxOpenAgeUs)
	assert.Equal(t, int64(0o077), cfg.FileMask)
	assert.Equal(t, time.RFC3339, cfg.TimestampFormat)
	assert.False(t, cfg.ReportOverflow)
	assert.Equal(t, int64(2), cfg.HeartbeatIntervalS)
	assert.Equal(t, "profile", cfg.HeartbeatLevel)
	assert.False(t, cfg.InternalErrorsToStderr)

	for level := LevelCritical; level <= LevelDebugMare; level++ {
		s := logger.Settings(level)
		if level <= LevelInfo {
			assert.True(t, s.Enabled, level.String())
			assert.Equal(t, destination.File, s.Kind)
			assert.Equal(t, path, s.Path)
		} else {
			assert.False(t, s.Enabled, level.String())
		}
	}

	// Built loggers are not started
	assert.False(t, logger.state.Started.Load())
	assert.Equal(t, 1024, logger.queue.Cap())
}

func TestBuilderLevels(t *testing.T) {
	cfg, err := NewBuilder().
		Level(LevelDebug, "enabled, stdout").
		LevelString("debug_hard", "disabled").
		LevelSettings(LevelError, destination.Settings{Enabled: true, Kind: destination.Discard}).
		Config()
	require.NoError(t, err)

	assert.Equal(t, "enabled, stdout", cfg.Debug)
	assert.Equal(t, "disabled", cfg.DebugHard)
	assert.Equal(t, "enabled, no_ansi_colors, no_location, devnull", cfg.Error)
}

func TestBuilderErrors(t *testing.T) {
	t.Run("invalid level name", func(t *testing.T) {
		_, err := NewBuilder().LevelString("loud", "enabled").Build()
		assert.Error(t, err)
	})

	t.Run("invalid heartbeat level", func(t *testing.T) {
		_, err := NewBuilder().Heartbeat(time.Second, "nope").Build()
		assert.Error(t, err)
	})

	t.Run("first error is kept", func(t *testing.T) {
		_, err := NewBuilder().
			Level(Severity(20), "enabled").
			LevelString("loud", "enabled").
			Config()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid level: 20")
	})

	t.Run("validation error from build", func(t *testing.T) {
		_, err := NewBuilder().QueueSize(-1).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue_size")
	})

	t.Run("file with invalid max level", func(t *testing.T) {
		_, err := NewBuilder().File("/tmp/x.log", Severity(12)).Build()
		assert.Error(t, err)
	})
}
