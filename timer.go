package alog

import (
	"fmt"
	"sync"
	"time"

	"github.com/trickstertwo/xclock"
)

// Timer accumulates elapsed time across Start/Stop intervals and reports it
// at the profile level. A Timer is safe for concurrent use.
type Timer struct {
	name   string
	logger *Logger

	mu       sync.Mutex
	start    time.Time
	running  bool
	total    time.Duration
	deadline time.Time
}

// newTimer returns a running timer
func newTimer(l *Logger, name string) *Timer {
	t := &Timer{
		name:    name,
		logger:  l,
		running: true,
	}
	t.start = t.now()
	return t
}

// now reads the owning logger's clock, or the default clock for a detached timer
func (t *Timer) now() time.Time {
	if t.logger != nil {
		return t.logger.now()
	}
	return xclock.Now()
}

// Name returns the registry key of the timer
func (t *Timer) Name() string {
	return t.name
}

// Start begins a new interval. Starting a running timer restarts the interval.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = t.now()
	t.running = true
}

// Current returns the time elapsed in the current interval
func (t *Timer) Current() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return t.now().Sub(t.start)
}

// Stop ends the current interval, adds it to the total and returns the total
func (t *Timer) Stop() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.total += t.now().Sub(t.start)
		t.running = false
	}
	return t.total
}

// Total returns the accumulated time of finished intervals
func (t *Timer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Reset clears the total and restarts the timer
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = 0
	t.start = t.now()
	t.running = true
}

// SetDeadline arms the deadline d from now; zero or negative disarms it
func (t *Timer) SetDeadline(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d <= 0 {
		t.deadline = time.Time{}
		return
	}
	t.deadline = t.now().Add(d)
}

// DeadlineReached reports whether an armed deadline has passed
func (t *Timer) DeadlineReached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.deadline.IsZero() && !t.now().Before(t.deadline)
}

// Report stops the timer and logs its total with args at the profile level
func (t *Timer) Report(args ...any) {
	total := t.Stop()
	if t.logger == nil {
		return
	}
	msg := append([]any{fmt.Sprintf("timer %s: %v", t.name, total)}, args...)
	t.logger.LogDepth(1, LevelProfile, msg...)
}
