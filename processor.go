package alog

import (
	"fmt"
)

// processRecords is the delivery loop. It drains the queue in batches,
// schedules each record on its level's destination and flushes once per
// batch. It returns after flushing the batch that carried the sentinel.
func (l *Logger) processRecords(done chan<- struct{}) {
	defer close(done)

	var batch []*record
	var waiters []chan struct{}
	draining := false

	for !draining {
		batch = l.queue.DrainAll(batch[:0])

		var holes uint64
		for _, r := range batch {
			switch {
			case r == nil:
				holes++
			case draining && r.kind == kindLog:
				// Raced past the sentinel
				l.state.DroppedLogs.Add(1)
			case r.kind == kindEOF:
				draining = true
			default:
				if r.done != nil {
					waiters = append(waiters, r.done)
				}
				l.processRecord(r)
			}
		}
		clear(batch)

		if holes > 0 {
			l.state.Holes.Add(holes)
			l.reportOverflow(holes)
		}

		l.table.FlushAll()
		l.publishStats()

		for _, w := range waiters {
			close(w)
		}
		clear(waiters)
		waiters = waiters[:0]
	}
}

// processRecord applies one non-sentinel record to the destination table
func (l *Logger) processRecord(r *record) {
	switch r.kind {
	case kindLog:
		if !r.level.Valid() || len(r.payload) == 0 {
			l.malformed(r)
			return
		}
		l.table.Schedule(int(r.level), r.payload)
		l.state.TotalLogsProcessed.Add(1)

	case kindConfigure:
		// Records already scheduled belong to the old target
		l.table.FlushAll()
		l.table.Configure(int(r.level), r.settings)

	case kindOptions:
		l.table.FlushAll()
		l.table.SetOptions(r.options)

	case kindFlush:
		// Waiter is released after the batch flush
	}
}

// reportOverflow schedules a warning line counting the records lost since
// the previous batch
func (l *Logger) reportOverflow(holes uint64) {
	if !l.getConfig().ReportOverflow {
		return
	}
	s := l.table.Settings(int(LevelWarning))
	if !s.Enabled {
		return
	}
	msg := fmt.Sprintf("log queue overflow, %d record(s) lost", holes)
	payload := l.formatter.Load().format(l.now(), LevelWarning, s, "", false, []any{msg})
	l.table.Schedule(int(LevelWarning), payload)
}

// malformed handles a record that violates the payload contract
func (l *Logger) malformed(r *record) {
	if debugBuild {
		panic(fmt.Sprintf("alog: malformed record reached delivery: level %d, %d bytes", int(r.level), len(r.payload)))
	}
	l.state.MalformedLogs.Add(1)
	l.internalLog("dropping malformed record: level %d, %d bytes\n", int(r.level), len(r.payload))
}

// publishStats exposes the table counters to other goroutines
func (l *Logger) publishStats() {
	st := l.table.Stats()
	l.state.DestinationStats.Store(&st)
}
