package alog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartBeforeApplyConfig(t *testing.T) {
	logger := NewLogger()

	err := logger.Start()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, logger.state.Started.Load())
}

func TestStartIsIdempotent(t *testing.T) {
	logger, _ := createTestLogger(t)
	defer logger.Shutdown()

	done := logger.processorDone
	require.NoError(t, logger.Start())
	assert.Equal(t, done, logger.processorDone, "second Start must not launch another delivery goroutine")
}

func TestStopFlushesQueuedRecords(t *testing.T) {
	logger, tmpDir := createTestLogger(t)

	for i := 0; i < 100; i++ {
		logger.Info("record", i)
	}
	require.NoError(t, logger.Stop())

	content, err := os.ReadFile(filepath.Join(tmpDir, "test.log"))
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(string(content), "INFO record"))
	assert.Contains(t, string(content), "record 99\n")

	// Stop on a stopped logger is a no-op
	assert.NoError(t, logger.Stop())
	assert.NoError(t, logger.Shutdown())
}

func TestStopThenRestart(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	logger.Info("first run")
	require.NoError(t, logger.Stop())

	logger.Info("while stopped")
	assert.Equal(t, uint64(1), logger.Stats().Dropped)

	require.NoError(t, logger.Start())
	logger.Info("second run")

	content := readLogFile(t, logger, tmpDir, "test.log")
	assert.Contains(t, content, "first run")
	assert.Contains(t, content, "second run")
	assert.NotContains(t, content, "while stopped")
}

func TestShutdown(t *testing.T) {
	t.Run("shutdown without initialization", func(t *testing.T) {
		logger := NewLogger()
		assert.NoError(t, logger.Shutdown())
	})

	t.Run("shutdown releases descriptors", func(t *testing.T) {
		logger, tmpDir := createTestLogger(t)

		logger.Info("before shutdown")
		require.NoError(t, logger.Flush(time.Second))
		assert.True(t, logger.table.HasHandle(int(LevelInfo)))

		require.NoError(t, logger.Shutdown())
		assert.False(t, logger.table.HasHandle(int(LevelInfo)))
		assert.False(t, logger.state.IsInitialized.Load())

		content, err := os.ReadFile(filepath.Join(tmpDir, "test.log"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "before shutdown")
	})

	t.Run("double shutdown", func(t *testing.T) {
		logger, _ := createTestLogger(t)
		assert.NoError(t, logger.Shutdown())
		assert.NoError(t, logger.Shutdown())
	})

	t.Run("restart after shutdown requires configuration", func(t *testing.T) {
		logger, _ := createTestLogger(t)
		require.NoError(t, logger.Shutdown())

		assert.ErrorIs(t, logger.Start(), ErrNotInitialized)
		require.NoError(t, logger.ApplyConfig(logger.GetConfig()))
		require.NoError(t, logger.Start())
		assert.NoError(t, logger.Shutdown())
	})
}

func TestFlushStates(t *testing.T) {
	logger, _, _ := newTestLogger(t)

	err := logger.Flush(100 * time.Millisecond)
	assert.True(t, errors.Is(err, ErrNotStarted))

	require.NoError(t, logger.Start())
	assert.NoError(t, logger.Flush(time.Second))

	require.NoError(t, logger.Shutdown())
	assert.ErrorIs(t, logger.Flush(100*time.Millisecond), ErrNotInitialized)
}

func TestConcurrentProducersDuringStop(t *testing.T) {
	logger, tmpDir := createTestLogger(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				logger.Info("goroutine", id, "seq", i)
			}
		}(g)
	}

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, logger.Stop(5*time.Second))
	wg.Wait()

	stats := logger.Stats()
	content, err := os.ReadFile(filepath.Join(tmpDir, "test.log"))
	require.NoError(t, err)

	written := uint64(strings.Count(string(content), "INFO goroutine"))
	assert.Equal(t, stats.Processed, written)
	// Records accepted before the sentinel and discarded after it count twice
	assert.GreaterOrEqual(t, stats.Submitted+stats.Dropped, uint64(8*200))
	assert.LessOrEqual(t, stats.Processed+stats.Holes, stats.Submitted)

	require.NoError(t, logger.Shutdown())
}

func TestQueueResizeWhileRunning(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	require.NoError(t, logger.ApplyConfigString("queue_size=1024"))
	assert.Equal(t, 1024, logger.queue.Requested())

	logger.Info("after resize request")
	content := readLogFile(t, logger, tmpDir, "test.log")
	assert.Contains(t, content, "after resize request")
	assert.Equal(t, 1024, logger.queue.Cap())
}

func TestStopTimeoutThenRestart(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	logger := NewLogger()
	logger.stdout = w
	logger.errOut = &syncBuffer{}
	cfg := DefaultConfig()
	cfg.QueueSize = 8
	cfg.ReportOverflow = false
	cfg.Info = "enabled, no_ansi_colors, stdout"
	require.NoError(t, logger.ApplyConfig(cfg))
	require.NoError(t, logger.Start())

	// Nobody reads the pipe: delivery blocks in the write and the queue fills
	big := strings.Repeat("x", 32*1024)
	require.Eventually(t, func() bool {
		logger.Info(big)
		return logger.queue.Len() == logger.queue.Cap()
	}, 5*time.Second, time.Millisecond)

	require.ErrorIs(t, logger.Stop(50*time.Millisecond), ErrStopTimeout)

	// The stalled goroutine still owns the table
	assert.ErrorIs(t, logger.Start(), ErrStopTimeout)
	assert.ErrorIs(t, logger.ConfigureString(LevelInfo, "disabled"), ErrStopTimeout)
	assert.ErrorIs(t, logger.ApplyConfig(cfg), ErrStopTimeout)
	assert.ErrorIs(t, logger.Shutdown(), ErrStopTimeout)
	assert.True(t, logger.state.IsInitialized.Load())

	go io.Copy(io.Discard, r)

	require.Eventually(t, func() bool {
		logger.initMu.Lock()
		defer logger.initMu.Unlock()
		return !logger.processorAlive()
	}, 5*time.Second, time.Millisecond, "delivery goroutine exits once the sentinel arrives")

	require.NoError(t, logger.Start())
	logger.Info("after restart")
	require.NoError(t, logger.Flush(time.Second))
	require.NoError(t, logger.Shutdown())
	assert.False(t, logger.processorAlive())
}

func TestStopTimeoutWaitingForExit(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	logger := NewLogger()
	logger.stdout = w
	cfg := DefaultConfig()
	cfg.Info = "enabled, no_ansi_colors, stdout"
	require.NoError(t, logger.ApplyConfig(cfg))
	require.NoError(t, logger.Start())

	// Fill the pipe so the batch carrying the sentinel stalls in the write
	big := strings.Repeat("y", 32*1024)
	for i := 0; i < 8; i++ {
		logger.Info(big)
	}

	require.ErrorIs(t, logger.Stop(50*time.Millisecond), ErrStopTimeout)
	assert.ErrorIs(t, logger.Start(), ErrStopTimeout)

	go io.Copy(io.Discard, r)

	require.Eventually(t, func() bool {
		logger.initMu.Lock()
		defer logger.initMu.Unlock()
		return !logger.processorAlive()
	}, 5*time.Second, time.Millisecond)

	require.NoError(t, logger.Start())
	require.NoError(t, logger.Shutdown())
}
