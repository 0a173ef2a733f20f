package alog

import (
	"sync/atomic"
	"time"

	"github.com/lixenwraith/alog/destination"
)

// State encapsulates the runtime state of the logger
type State struct {
	IsInitialized  atomic.Bool
	Started        atomic.Bool // Producers may push
	ShutdownCalled atomic.Bool

	// Producer side
	Submitted     atomic.Uint64 // Records accepted by the queue
	DroppedLogs   atomic.Uint64 // Records rejected by overflow, not started, or after the sentinel
	MalformedLogs atomic.Uint64 // Empty payload or unknown level

	// Delivery side
	TotalLogsProcessed atomic.Uint64 // Records scheduled to a destination
	Holes              atomic.Uint64 // Evicted records observed by the delivery goroutine
	DestinationStats   atomic.Pointer[destination.Stats]

	// Heartbeat statistics
	HeartbeatSequence atomic.Uint64
	LoggerStartTime   atomic.Value // time.Time
}

// Stats is a point-in-time view of the pipeline counters
type Stats struct {
	Submitted   uint64
	Dropped     uint64
	Malformed   uint64
	Processed   uint64
	Holes       uint64
	FlushPasses uint64
	Writes      uint64
	Bytes       uint64
	Reopens     uint64
	OpenErrors  uint64
	WriteErrors uint64
	QueueLen    int
	QueueCap    int
	Uptime      time.Duration
}

// Stats returns the current counters. Destination counters lag by at most one
// flush pass.
func (l *Logger) Stats() Stats {
	s := Stats{
		Submitted: l.state.Submitted.Load(),
		Dropped:   l.state.DroppedLogs.Load(),
		Malformed: l.state.MalformedLogs.Load(),
		Processed: l.state.TotalLogsProcessed.Load(),
		Holes:     l.state.Holes.Load(),
		QueueLen:  l.queue.Len(),
		QueueCap:  l.queue.Cap(),
	}
	if ds := l.state.DestinationStats.Load(); ds != nil {
		s.FlushPasses = ds.FlushPasses
		s.Writes = ds.Writes
		s.Bytes = ds.Bytes
		s.Reopens = ds.Reopens
		s.OpenErrors = ds.OpenErrors
		s.WriteErrors = ds.WriteErrors
	}
	if start, ok := l.state.LoggerStartTime.Load().(time.Time); ok && !start.IsZero() {
		s.Uptime = time.Since(start)
	}
	return s
}
