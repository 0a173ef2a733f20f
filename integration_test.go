package alog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xclock"
)

// TestConcurrentProducersKeepOrder verifies that with a queue large enough to
// never overflow every record is written once and each producer's records
// keep their submission order
func TestConcurrentProducersKeepOrder(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	require.NoError(t, logger.ApplyConfigString("queue_size=8192"))

	const workers, perWorker = 4, 500
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				logger.Info("worker", id, "seq", i)
			}
		}(w)
	}
	wg.Wait()

	content := readLogFile(t, logger, tmpDir, "test.log")
	next := make([]int, workers)
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		idx := strings.Index(line, "INFO worker ")
		require.GreaterOrEqual(t, idx, 0, line)

		var id, seq int
		_, err := fmt.Sscanf(line[idx:], "INFO worker %d seq %d", &id, &seq)
		require.NoError(t, err, line)
		require.Equal(t, next[id], seq, "worker %d out of order", id)
		next[id]++
	}

	for w := 0; w < workers; w++ {
		assert.Equal(t, perWorker, next[w])
	}

	stats := logger.Stats()
	assert.Equal(t, uint64(workers*perWorker), stats.Submitted)
	assert.Zero(t, stats.Dropped)
	assert.Zero(t, stats.Holes)
}

// TestOverflowAccounting floods a tiny queue and checks that every record
// is either written, lost to a hole, or counted as dropped
func TestOverflowAccounting(t *testing.T) {
	logger, tmpDir, _ := newTestLogger(t)
	require.NoError(t, logger.ApplyConfigString("queue_size=4", "report_overflow=false"))
	require.NoError(t, logger.Start())
	defer logger.Shutdown()

	const total = 2000
	for i := 0; i < total; i++ {
		logger.Info("flood", i)
	}

	content := readLogFile(t, logger, tmpDir, "test.log")
	written := uint64(strings.Count(content, "INFO flood"))

	stats := logger.Stats()
	assert.Equal(t, uint64(total), stats.Submitted+stats.Dropped)
	assert.Equal(t, stats.Submitted, stats.Processed+stats.Holes)
	assert.Equal(t, stats.Processed, written)
}

// TestReopenAfterAge moves the destination clock past the age limit and
// checks that a rotated file is replaced on the next write
func TestReopenAfterAge(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	defer logger.Shutdown()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(tmpDir, "test.log")

	logger.clock = xclock.NewFrozen(base)
	require.NoError(t, logger.ApplyConfig(logger.GetConfig()))

	logger.Info("early")
	require.NoError(t, logger.Flush(time.Second))
	require.NoError(t, os.Rename(path, path+".old"))

	// Exactly at the limit the handle is kept
	logger.clock = xclock.NewFrozen(base.Add(30 * time.Second))
	require.NoError(t, logger.ApplyConfig(logger.GetConfig()))
	logger.Info("at limit")
	require.NoError(t, logger.Flush(time.Second))
	assert.NoFileExists(t, path)

	logger.clock = xclock.NewFrozen(base.Add(30*time.Second + time.Microsecond))
	require.NoError(t, logger.ApplyConfig(logger.GetConfig()))
	logger.Info("late")

	content := readLogFile(t, logger, tmpDir, "test.log")
	assert.Contains(t, content, "late")
	assert.NotContains(t, content, "early")

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Contains(t, string(old), "early")
	assert.Contains(t, string(old), "at limit")
}

func TestStandardStreamOverride(t *testing.T) {
	out, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer out.Close()

	logger := NewLogger()
	logger.stdout = out
	cfg := DefaultConfig()
	cfg.Info = "enabled, no_ansi_colors, stdout"
	require.NoError(t, logger.ApplyConfig(cfg))
	require.NoError(t, logger.Start())

	logger.Info("to stdout")
	require.NoError(t, logger.Flush(time.Second))
	require.NoError(t, logger.Shutdown())

	// Shutdown must not close the process streams
	_, err = out.WriteString("still open\n")
	require.NoError(t, err)

	content, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "INFO to stdout\n")
	assert.Contains(t, string(content), "still open\n")
}
