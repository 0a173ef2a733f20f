package destination

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/trickstertwo/xclock"
)

const (
	DefaultMaxWritesSinceReopen = 1000
	DefaultMaxOpenAge           = 30 * time.Second
	DefaultFileMask             = 0o022
)

// Options are the process-level knobs of a Table
type Options struct {
	// Writes served by one descriptor before it is reopened
	MaxWritesSinceReopen uint64
	// Age after which a descriptor is reopened
	MaxOpenAge time.Duration
	// Permission bits removed from 0666 when creating log files
	FileMask os.FileMode

	// Fallback for open/write failure reports, defaults to os.Stderr
	ErrorOutput io.Writer
	// Standard streams, default to os.Stdout and os.Stderr. Never closed.
	Stdout *os.File
	Stderr *os.File
	// Source of time for descriptor age, defaults to xclock.Default()
	Clock xclock.Clock
}

// DefaultOptions returns the documented defaults
func DefaultOptions() Options {
	return Options{
		MaxWritesSinceReopen: DefaultMaxWritesSinceReopen,
		MaxOpenAge:           DefaultMaxOpenAge,
		FileMask:             DefaultFileMask,
	}
}

// Stats are cumulative counters of a Table
type Stats struct {
	FlushPasses uint64 // FlushAll calls
	Writes      uint64 // vectored write batches issued
	Bytes       uint64 // bytes written
	Reopens     uint64 // descriptors acquired
	OpenErrors  uint64
	WriteErrors uint64
	Discarded   uint64 // buffers dropped without a write
}

// entry is the state of one level
type entry struct {
	settings          Settings
	handle            *os.File
	writesSinceReopen uint64
	lastReopen        time.Time
	errorReported     bool
	pending           [][]byte
}

// Table holds one entry per level. It is not safe for concurrent use: after
// construction it belongs to the delivery goroutine.
type Table struct {
	entries []entry
	opts    Options
	stats   Stats
}

// NewTable creates a table with the given number of levels, all disabled
func NewTable(levels int, opts Options) *Table {
	t := &Table{entries: make([]entry, levels)}
	t.SetOptions(opts)
	return t
}

// SetOptions replaces the process-level knobs. Zero values fall back to defaults.
func (t *Table) SetOptions(opts Options) {
	def := DefaultOptions()
	if opts.MaxWritesSinceReopen == 0 {
		opts.MaxWritesSinceReopen = def.MaxWritesSinceReopen
	}
	if opts.MaxOpenAge <= 0 {
		opts.MaxOpenAge = def.MaxOpenAge
	}
	if opts.ErrorOutput == nil {
		opts.ErrorOutput = os.Stderr
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = xclock.Default()
	}
	t.opts = opts
}

// Options returns the knobs in effect
func (t *Table) Options() Options {
	return t.opts
}

// Levels returns the number of entries
func (t *Table) Levels() int {
	return len(t.entries)
}

// Configure replaces a level's settings. The level is disabled first, the
// error-reported flag is cleared, and an open handle is released if the
// target changes, before the new settings are installed.
func (t *Table) Configure(level int, s Settings) {
	e := &t.entries[level]
	old := e.settings
	e.settings.Enabled = false
	e.errorReported = false
	if old.Kind != s.Kind || old.Path != s.Path {
		t.release(e)
	}
	e.settings = s
}

// Settings returns a level's current settings
func (t *Table) Settings(level int) Settings {
	return t.entries[level].settings
}

// Schedule appends b to the level's pending buffers. No I/O is performed.
func (t *Table) Schedule(level int, b []byte) {
	e := &t.entries[level]
	e.pending = append(e.pending, b)
}

// Pending returns the number of buffers scheduled for the level
func (t *Table) Pending(level int) int {
	return len(t.entries[level].pending)
}

// HasHandle reports whether the level currently holds a descriptor
func (t *Table) HasHandle(level int) bool {
	return t.entries[level].handle != nil
}

// NeedsReopen reports whether the level's descriptor has served its write
// budget or outlived the maximum age. The budget is inclusive: a descriptor
// that has served MaxWritesSinceReopen writes is reopened before the next
// one. The age bound is exclusive: a descriptor exactly MaxOpenAge old is kept.
func (t *Table) NeedsReopen(level int) bool {
	return t.needsReopen(&t.entries[level])
}

func (t *Table) needsReopen(e *entry) bool {
	if e.writesSinceReopen >= t.opts.MaxWritesSinceReopen {
		return true
	}
	return t.opts.Clock.Now().Sub(e.lastReopen) > t.opts.MaxOpenAge
}

// FlushAll writes every level's pending buffers in level order with one
// vectored write per level. Pending buffers are cleared whether or not the
// write succeeded.
func (t *Table) FlushAll() {
	t.stats.FlushPasses++
	for i := range t.entries {
		e := &t.entries[i]
		t.flush(e)
		clear(e.pending)
		e.pending = e.pending[:0]
	}
}

func (t *Table) flush(e *entry) {
	if !e.settings.Enabled || e.settings.Kind == Discard {
		t.release(e)
		t.stats.Discarded += uint64(len(e.pending))
		return
	}

	if e.handle != nil && t.needsReopen(e) {
		t.release(e)
	}
	if len(e.pending) == 0 {
		return
	}

	if e.handle == nil {
		if err := t.open(e); err != nil {
			t.stats.OpenErrors++
			t.report(e, "cannot open/create log file %q: %v", e.settings.Path, err)
			t.stats.Discarded += uint64(len(e.pending))
			return
		}
	}

	n, err := writeBuffers(e.handle, e.pending)
	t.stats.Bytes += uint64(n)
	e.writesSinceReopen++
	t.stats.Writes++
	if err != nil {
		t.stats.WriteErrors++
		t.report(e, "cannot write to %s: %v", t.describe(e), err)
	}
}

// open acquires the descriptor for the entry's destination
func (t *Table) open(e *entry) error {
	switch e.settings.Kind {
	case Stdout:
		e.handle = t.opts.Stdout
	case Stderr:
		e.handle = t.opts.Stderr
	case File:
		mode := os.FileMode(0o666) &^ t.opts.FileMask
		f, err := os.OpenFile(e.settings.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, mode)
		if err != nil {
			return err
		}
		e.handle = f
	default:
		return fmt.Errorf("unsupported destination %s", e.settings.Kind)
	}
	e.writesSinceReopen = 0
	e.lastReopen = t.opts.Clock.Now()
	e.errorReported = false
	t.stats.Reopens++
	return nil
}

// release closes a file handle; standard streams are only forgotten
func (t *Table) release(e *entry) {
	if e.handle == nil {
		return
	}
	if e.handle != t.opts.Stdout && e.handle != t.opts.Stderr {
		if err := e.handle.Close(); err != nil {
			t.report(e, "cannot close %s: %v", t.describe(e), err)
		}
	}
	e.handle = nil
}

// report writes to the fallback stream once per failure episode
func (t *Table) report(e *entry, format string, args ...any) {
	if e.errorReported {
		return
	}
	e.errorReported = true
	fmt.Fprintf(t.opts.ErrorOutput, "alog: "+format+"\n", args...)
}

func (t *Table) describe(e *entry) string {
	if e.settings.Kind == File {
		return fmt.Sprintf("log file %q", e.settings.Path)
	}
	return e.settings.Kind.String()
}

// Stats returns the cumulative counters
func (t *Table) Stats() Stats {
	return t.stats
}

// Close releases every descriptor and drops pending buffers
func (t *Table) Close() {
	for i := range t.entries {
		e := &t.entries[i]
		t.release(e)
		clear(e.pending)
		e.pending = e.pending[:0]
	}
}
