package compat

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/alog"
)

var _ zapcore.Core = (*ZapCore)(nil)

// ZapCore implements zapcore.Core on top of an alog.Logger. Message and
// fields are rendered by a zap console encoder without time and level, the
// line prefix is added by alog.
type ZapCore struct {
	logger      *alog.Logger
	enc         zapcore.Encoder
	syncTimeout time.Duration
}

// ZapOption allows customizing the core
type ZapOption func(*ZapCore)

// WithZapEncoder replaces the field encoder. Time and level keys of the
// encoder config should be empty.
func WithZapEncoder(enc zapcore.Encoder) ZapOption {
	return func(c *ZapCore) {
		c.enc = enc
	}
}

// WithSyncTimeout bounds how long Sync waits for the pipeline to flush
func WithSyncTimeout(d time.Duration) ZapOption {
	return func(c *ZapCore) {
		c.syncTimeout = d
	}
}

// ZapEncoderConfig is the default encoder config: message, logger name,
// caller when enabled, and fields
func ZapEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:       "msg",
		NameKey:          "logger",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeTime:       zapcore.RFC3339NanoTimeEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
		SkipLineEnding:   true,
	}
}

// NewZapCore creates a core writing into logger
func NewZapCore(logger *alog.Logger, opts ...ZapOption) *ZapCore {
	c := &ZapCore{
		logger:      logger,
		enc:         zapcore.NewConsoleEncoder(ZapEncoderConfig()),
		syncTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ZapSeverity maps a zap level to the alog level it is written at
func ZapSeverity(level zapcore.Level) alog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return alog.LevelDebug
	case level == zapcore.InfoLevel:
		return alog.LevelInfo
	case level == zapcore.WarnLevel:
		return alog.LevelWarning
	case level == zapcore.ErrorLevel:
		return alog.LevelError
	default:
		return alog.LevelCritical
	}
}

// Enabled follows the destination settings of the mapped level
func (c *ZapCore) Enabled(level zapcore.Level) bool {
	return c.logger.Enabled(ZapSeverity(level))
}

// With returns a core that adds fields to every entry
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.enc = c.enc.Clone()
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return &clone
}

func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write hands the encoded entry to the logger. Entries above error level
// are flushed before returning, since zap may exit or panic next.
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	text := strings.TrimRight(buf.String(), "\n")
	buf.Free()

	c.logger.Log(ZapSeverity(ent.Level), text)

	if ent.Level > zapcore.ErrorLevel {
		return c.Sync()
	}
	return nil
}

// Sync waits until the logger has written everything submitted so far.
// A stopped logger has nothing in flight.
func (c *ZapCore) Sync() error {
	err := c.logger.Flush(c.syncTimeout)
	if errors.Is(err, alog.ErrNotStarted) || errors.Is(err, alog.ErrNotInitialized) {
		return nil
	}
	return err
}
