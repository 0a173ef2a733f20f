package alog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
	"golang.org/x/term"

	"github.com/lixenwraith/alog/destination"
	"github.com/lixenwraith/alog/internal/queue"
)

// Logger is the core struct that encapsulates all logger functionality
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex

	queue *queue.Queue[record]
	// table belongs to the delivery goroutine while started, to initMu holders otherwise
	table     *destination.Table
	levels    atomic.Pointer[levelTable]
	formatter atomic.Pointer[formatter]
	timers    *Named[string, *Timer]
	ansi      bool // colour default for compact settings without a colour token

	// Output overrides, nil means the process streams and the default clock
	stdout *os.File
	stderr *os.File
	errOut io.Writer
	clock  xclock.Clock

	processorDone chan struct{}
	heartbeatStop chan struct{}
	heartbeatDone chan struct{}
}

// NewLogger creates a new Logger instance with default settings. Critical,
// error and warning go to stderr, colourised when stderr is a terminal; all
// other levels are disabled.
func NewLogger() *Logger {
	l := &Logger{
		ansi: term.IsTerminal(int(os.Stderr.Fd())),
	}
	cfg := DefaultConfig()
	l.currentConfig.Store(cfg)

	l.queue = queue.New[record](int(cfg.QueueSize), queue.WithPinned(pinned))
	l.table = destination.NewTable(LevelCount, l.tableOptions(cfg))

	levels := defaultLevels(l.ansi)
	for i, s := range levels {
		l.table.Configure(i, s)
	}
	l.levels.Store(&levels)
	l.formatter.Store(newFormatter(cfg.TimestampFormat))
	l.timers = NewNamed(func(name string) *Timer {
		return newTimer(l, name)
	})

	l.state.LoggerStartTime.Store(time.Now())

	return l
}

// defaultLevels returns the settings every logger starts with
func defaultLevels(ansi bool) levelTable {
	var t levelTable
	for i := range t {
		t[i] = destination.Settings{
			Enabled:    Severity(i) <= LevelWarning,
			ANSIColors: ansi,
			Kind:       destination.Stderr,
		}
	}
	return t
}

// ApplyConfig applies a validated configuration to the logger.
// On a running logger the queue size becomes a lazy resize request and the
// reopen knobs reach the delivery goroutine in order with pending records.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	if !l.state.Started.Load() && l.processorAlive() {
		return errProcessorBusy
	}

	l.applyConfig(cfg.Clone())
	return nil
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// Start launches the delivery goroutine. Safe to call multiple times.
// Returns ErrNotInitialized if no configuration was applied.
func (l *Logger) Start() error {
	if !l.state.IsInitialized.Load() {
		return ErrNotInitialized
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.state.Started.Load() {
		return nil
	}

	// A delivery goroutine that missed its stop deadline still owns the table
	if l.processorAlive() {
		return errProcessorBusy
	}
	// Records a timed-out stop left behind the sentinel
	l.discardQueued()

	cfg := l.getConfig()
	done := make(chan struct{})
	l.processorDone = done
	go l.processRecords(done)

	l.state.LoggerStartTime.Store(time.Now())
	l.state.Started.Store(true)
	l.startHeartbeat(cfg)

	return nil
}

// Stop pushes the end-of-stream sentinel and waits for the delivery goroutine
// to flush everything queued before it. The logger can be restarted with
// Start. Returns nil if already stopped.
//
// On ErrStopTimeout the sentinel is still delivered once the goroutine catches
// up; until it exits, Start, ApplyConfig, Configure and Shutdown fail with an
// error wrapping ErrStopTimeout.
func (l *Logger) Stop(timeout ...time.Duration) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.stop(effectiveTimeout(timeout))
}

// Shutdown stops the logger and releases every destination descriptor.
// A later ApplyConfig re-initializes it.
// After a timeout the logger stays initialized and Shutdown can be retried.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	if !l.state.IsInitialized.Load() {
		l.state.ShutdownCalled.Store(false)
		return nil
	}

	err := l.stop(effectiveTimeout(timeout))
	if err == nil && l.processorAlive() {
		err = errProcessorBusy
	}
	if err != nil {
		// The delivery goroutine still owns the table; Shutdown may be retried
		l.state.ShutdownCalled.Store(false)
		return err
	}

	l.state.IsInitialized.Store(false)
	l.table.Close()
	l.publishStats()
	return nil
}

// Flush blocks until every record submitted before the call has been written
// or the timeout expires
func (l *Logger) Flush(timeout time.Duration) error {
	l.initMu.Lock()
	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		l.initMu.Unlock()
		return ErrNotInitialized
	}
	if !l.state.Started.Load() {
		l.initMu.Unlock()
		return ErrNotStarted
	}

	done := make(chan struct{})
	l.pushControl(&record{kind: kindFlush, done: done})
	l.initMu.Unlock()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w (%v)", ErrFlushTimeout, timeout)
	}
}

// Configure replaces the settings of one level. Producers see the change
// immediately; the delivery goroutine applies it in order with records
// already queued.
func (l *Logger) Configure(level Severity, s destination.Settings) error {
	if !level.Valid() {
		return fmtErrorf("invalid level: %d", int(level))
	}
	if s.Kind == destination.File && s.Path == "" {
		s.Kind = destination.Discard
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	if !l.state.Started.Load() && l.processorAlive() {
		return errProcessorBusy
	}

	l.configure(level, s)
	return nil
}

// ConfigureString configures a level from the compact text form, e.g.
// `enabled, no_ansi_colors, file "/var/log/app.log"`
func (l *Logger) ConfigureString(level Severity, settings string) error {
	return l.Configure(level, destination.ParseSettings(settings, l.ansi))
}

// Settings returns the settings producers currently use for level
func (l *Logger) Settings(level Severity) destination.Settings {
	if !level.Valid() {
		return destination.Settings{}
	}
	return l.levels.Load()[level]
}

// Enabled reports whether records at level are currently formatted and queued
func (l *Logger) Enabled(level Severity) bool {
	return level.Valid() && l.levels.Load()[level].Enabled
}

// Submit hands a finished payload to the delivery goroutine. It returns false
// if the record was dropped; the caller must not modify payload after a true
// return.
func (l *Logger) Submit(level Severity, payload []byte) bool {
	if !level.Valid() || len(payload) == 0 {
		l.state.MalformedLogs.Add(1)
		return false
	}
	return l.submit(level, payload)
}

// Timers returns the registry of named profile timers
func (l *Logger) Timers() *Named[string, *Timer] {
	return l.timers
}

// Timer returns the named profile timer, creating it on first use
func (l *Logger) Timer(name string) *Timer {
	return l.timers.Get(name)
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// applyConfig is the internal implementation for applying configuration, assuming initMu is held
func (l *Logger) applyConfig(cfg *Config) {
	oldCfg := l.getConfig()
	wasInitialized := l.state.IsInitialized.Load()
	started := l.state.Started.Load()
	l.currentConfig.Store(cfg)

	if started || l.queue.Len() > 0 {
		l.queue.RequestResize(int(cfg.QueueSize))
	} else if l.queue.Cap() != int(cfg.QueueSize) {
		l.queue.Init(int(cfg.QueueSize))
	}

	opts := l.tableOptions(cfg)
	if started {
		l.pushControl(&record{kind: kindOptions, options: opts})
	} else {
		l.table.SetOptions(opts)
	}

	if oldCfg.TimestampFormat != cfg.TimestampFormat {
		l.formatter.Store(newFormatter(cfg.TimestampFormat))
	}

	oldLevels := oldCfg.levelFields()
	for i, field := range cfg.levelFields() {
		if *field == "" || (wasInitialized && *field == *oldLevels[i]) {
			continue
		}
		l.configure(Severity(i), destination.ParseSettings(*field, l.ansi))
	}

	if started && (oldCfg.HeartbeatIntervalS != cfg.HeartbeatIntervalS) {
		l.stopHeartbeat()
		l.startHeartbeat(cfg)
	}

	l.state.IsInitialized.Store(true)
	l.state.ShutdownCalled.Store(false)
}

// configure updates the producer snapshot and routes the change to the
// table, assuming initMu is held
func (l *Logger) configure(level Severity, s destination.Settings) {
	next := *l.levels.Load()
	next[level] = s
	l.levels.Store(&next)

	if l.state.Started.Load() {
		l.pushControl(&record{kind: kindConfigure, level: level, settings: s})
	} else {
		l.table.Configure(int(level), s)
	}
}

// stop implements the sentinel protocol, assuming initMu is held
func (l *Logger) stop(timeout time.Duration) error {
	if !l.state.Started.CompareAndSwap(true, false) {
		return nil
	}

	l.stopHeartbeat()

	deadline := time.Now().Add(timeout)
	eof := &record{kind: kindEOF}
	if !l.pushControlUntil(eof, deadline) {
		// The sentinel must still arrive once delivery catches up
		go l.pushEventually(eof)
		return fmt.Errorf("%w (%v): queue stayed full", ErrStopTimeout, timeout)
	}

	select {
	case <-l.processorDone:
	case <-time.After(time.Until(deadline)):
		return fmt.Errorf("%w (%v)", ErrStopTimeout, timeout)
	}

	l.discardQueued()
	return nil
}

// processorAlive reports whether a delivery goroutine still owns the table
// and the consumer side of the queue, assuming initMu is held
func (l *Logger) processorAlive() bool {
	if l.processorDone == nil {
		return false
	}
	select {
	case <-l.processorDone:
		return false
	default:
		return true
	}
}

// discardQueued drops records that raced past the sentinel
func (l *Logger) discardQueued() {
	for {
		r, ok := l.queue.TryPop()
		if !ok {
			return
		}
		switch {
		case r == nil:
			l.state.Holes.Add(1)
		case r.kind == kindLog:
			l.state.DroppedLogs.Add(1)
		case r.done != nil:
			close(r.done)
		}
	}
}

// pushControl enqueues a pinned control record, yielding until it fits
func (l *Logger) pushControl(r *record) {
	l.pushControlUntil(r, time.Time{})
}

// pushControlUntil retries the push until it succeeds or deadline passes.
// A zero deadline never expires.
func (l *Logger) pushControlUntil(r *record, deadline time.Time) bool {
	for !l.queue.Push(r) {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return false
		}
		runtime.Gosched()
	}
	return true
}

// pushEventually keeps retrying a control push without holding initMu
func (l *Logger) pushEventually(r *record) {
	for !l.queue.Push(r) {
		time.Sleep(time.Millisecond)
	}
}

// now returns the logger clock time used for record timestamps
func (l *Logger) now() time.Time {
	if l.clock != nil {
		return l.clock.Now()
	}
	return xclock.Now()
}

// tableOptions builds destination options from cfg and the output overrides
func (l *Logger) tableOptions(cfg *Config) destination.Options {
	opts := cfg.tableOptions()
	opts.Stdout = l.stdout
	opts.Stderr = l.stderr
	opts.ErrorOutput = l.errOut
	opts.Clock = l.clock
	return opts
}

func effectiveTimeout(timeout []time.Duration) time.Duration {
	if len(timeout) > 0 && timeout[0] > 0 {
		return timeout[0]
	}
	return defaultStopTimeout
}
