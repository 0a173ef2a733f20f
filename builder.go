package alog

import (
	"time"

	"github.com/lixenwraith/alog/destination"
)

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration.
// The logger is not started.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()

	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Config returns a copy of the configuration built so far
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// QueueSize sets the hand-off queue capacity
func (b *Builder) QueueSize(size int64) *Builder {
	b.cfg.QueueSize = size
	return b
}

// MaxWritesSinceReopen sets how many writes a descriptor serves before reopen
func (b *Builder) MaxWritesSinceReopen(n int64) *Builder {
	b.cfg.MaxWritesSinceReopen = n
	return b
}

// MaxOpenAge sets how long a descriptor is kept before reopen
func (b *Builder) MaxOpenAge(d time.Duration) *Builder {
	b.cfg.MaxOpenAgeUs = d.Microseconds()
	return b
}

// FileMask sets the permission bits removed when creating log files
func (b *Builder) FileMask(mask int64) *Builder {
	b.cfg.FileMask = mask
	return b
}

// TimestampFormat sets the Go time layout of the line timestamp
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// ReportOverflow enables the warning line emitted after records were lost
func (b *Builder) ReportOverflow(enable bool) *Builder {
	b.cfg.ReportOverflow = enable
	return b
}

// Heartbeat enables periodic statistics records at the named level
func (b *Builder) Heartbeat(interval time.Duration, level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseSeverity(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.HeartbeatIntervalS = int64(interval / time.Second)
	b.cfg.HeartbeatLevel = level
	return b
}

// InternalErrorsToStderr toggles logger diagnostics on stderr
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Level sets a level's destination in compact form
func (b *Builder) Level(level Severity, settings string) *Builder {
	if b.err != nil {
		return b
	}
	b.err = b.cfg.SetLevel(level, settings)
	return b
}

// LevelString sets a level, named as in the configuration keys, from compact form
func (b *Builder) LevelString(name, settings string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseSeverity(name)
	if err != nil {
		b.err = err
		return b
	}
	return b.Level(level, settings)
}

// LevelSettings sets a level's destination from structured settings
func (b *Builder) LevelSettings(level Severity, s destination.Settings) *Builder {
	return b.Level(level, s.String())
}

// File routes every level from critical through max to path and disables
// the rest
func (b *Builder) File(path string, max Severity) *Builder {
	if b.err != nil {
		return b
	}
	if !max.Valid() {
		b.err = fmtErrorf("invalid level: %d", int(max))
		return b
	}
	on := destination.Settings{Enabled: true, Kind: destination.File, Path: path}
	for level := LevelCritical; level <= LevelDebugMare; level++ {
		if level <= max {
			b.Level(level, on.String())
		} else {
			b.Level(level, "disabled")
		}
	}
	return b
}

// Example usage:
// logger, err := alog.NewBuilder().
//
//	QueueSize(8192).
//	File("/var/log/app.log", alog.LevelInfo).
//	MaxOpenAge(10 * time.Second).
//	Build()
//
// if err == nil {
//
//	 logger.Start()
//	 defer logger.Shutdown()
//	 logger.Info("Logger initialized successfully")
//
// }
