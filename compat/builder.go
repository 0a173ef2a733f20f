// Package compat routes the logging of third-party frameworks into an
// alog pipeline
package compat

import (
	"fmt"

	"github.com/lixenwraith/alog"
)

// Builder creates adapters for gnet, fasthttp and zap sharing one logger.
// It can use an existing *alog.Logger instance or create a new one from a *alog.Config.
type Builder struct {
	logger *alog.Logger
	logCfg *alog.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters.
// If this is set WithConfig is ignored.
func (b *Builder) WithLogger(l *alog.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("alog/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance.
// Used only if no logger was given with WithLogger.
func (b *Builder) WithConfig(cfg *alog.Config) *Builder {
	b.logCfg = cfg
	return b
}

// getLogger resolves the logger, creating and starting one if necessary
func (b *Builder) getLogger() (*alog.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		return b.logger, nil
	}

	l := alog.NewLogger()
	cfg := b.logCfg
	if cfg == nil {
		cfg = alog.DefaultConfig()
	}

	if err := l.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	if err := l.Start(); err != nil {
		return nil, err
	}

	// Cache the logger for subsequent builds
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// BuildZap creates a zap core writing into the logger
func (b *Builder) BuildZap(opts ...ZapOption) (*ZapCore, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewZapCore(l, opts...), nil
}

// GetLogger returns the underlying *alog.Logger instance, creating it if needed
func (b *Builder) GetLogger() (*alog.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	appLogger, err := alog.NewBuilder().File("/var/log/app.log", alog.LevelDebug).Build()
//	if err != nil { /* handle error */ }
//	appLogger.Start()
//	defer appLogger.Shutdown()
//
//	builder := compat.NewBuilder().WithLogger(appLogger)
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//
//	core, _ := builder.BuildZap()
//	zl := zap.New(core)
