package alog

import (
	"fmt"
	"runtime"
	"time"
)

// startHeartbeat launches the heartbeat goroutine if an interval is
// configured, assuming initMu is held
func (l *Logger) startHeartbeat(cfg *Config) {
	if cfg.HeartbeatIntervalS <= 0 || l.heartbeatStop != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	l.heartbeatStop = stop
	l.heartbeatDone = done

	go l.runHeartbeat(time.Duration(cfg.HeartbeatIntervalS)*time.Second, stop, done)
}

// stopHeartbeat stops the heartbeat goroutine and waits for it, assuming
// initMu is held
func (l *Logger) stopHeartbeat() {
	if l.heartbeatStop == nil {
		return
	}
	close(l.heartbeatStop)
	<-l.heartbeatDone
	l.heartbeatStop = nil
	l.heartbeatDone = nil
}

func (l *Logger) runHeartbeat(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.logHeartbeat()
		case <-stop:
			return
		}
	}
}

// logHeartbeat logs pipeline and runtime statistics at the heartbeat level
func (l *Logger) logHeartbeat() {
	level := l.getConfig().heartbeatSeverity()
	if !l.Enabled(level) {
		return
	}

	sequence := l.state.HeartbeatSequence.Add(1)
	st := l.Stats()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	args := []any{
		"type", "heartbeat",
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", st.Uptime.Hours()),
		"submitted", st.Submitted,
		"dropped", st.Dropped,
		"holes", st.Holes,
		"processed", st.Processed,
		"reopens", st.Reopens,
		"queue", fmt.Sprintf("%d/%d", st.QueueLen, st.QueueCap),
		"alloc_mb", fmt.Sprintf("%.2f", float64(memStats.Alloc)/(1000*1000)),
		"num_goroutine", runtime.NumGoroutine(),
	}

	l.log(callerDepth-1, level, false, args...)
}
