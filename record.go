package alog

// log formats args on the calling goroutine and submits the finished line.
// depth is the runtime.Caller skip that reaches the application frame.
func (l *Logger) log(depth int, level Severity, multiline bool, args ...any) {
	if !level.Valid() {
		l.state.MalformedLogs.Add(1)
		return
	}

	s := l.levels.Load()[level]
	if !s.Enabled {
		return
	}

	if !l.state.Started.Load() {
		l.state.DroppedLogs.Add(1)
		return
	}

	var location string
	if s.ShowLocation {
		location = getLocation(depth)
	}

	payload := l.formatter.Load().format(l.now(), level, s, location, multiline, args)
	l.submit(level, payload)
}

// submit pushes a payload; ownership passes to the queue on success
func (l *Logger) submit(level Severity, payload []byte) bool {
	if !l.state.Started.Load() {
		l.state.DroppedLogs.Add(1)
		return false
	}

	if !l.queue.Push(&record{kind: kindLog, level: level, payload: payload}) {
		l.state.DroppedLogs.Add(1)
		return false
	}

	l.state.Submitted.Add(1)
	return true
}
