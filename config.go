package alog

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"

	"github.com/lixenwraith/alog/destination"
)

// Config holds all logger configuration values
type Config struct {
	// Hand-off queue
	QueueSize int64 `toml:"queue_size"` // Rounded up to a power of two

	// Descriptor reopen and file creation
	MaxWritesSinceReopen int64 `toml:"max_writes_since_reopen"`
	MaxOpenAgeUs         int64 `toml:"max_open_age_us"`
	FileMask             int64 `toml:"file_mask"` // Permission bits removed from 0666

	// Formatting
	TimestampFormat string `toml:"timestamp_format"`

	// Overflow and heartbeat reporting
	ReportOverflow     bool   `toml:"report_overflow"`      // Warning line when records were lost
	HeartbeatIntervalS int64  `toml:"heartbeat_interval_s"` // 0 disables heartbeat
	HeartbeatLevel     string `toml:"heartbeat_level"`

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`

	// Per-level destinations in compact form, empty keeps the current settings
	Critical  string `toml:"critical"`
	Error     string `toml:"error"`
	Warning   string `toml:"warning"`
	Info      string `toml:"info"`
	Profile   string `toml:"profile"`
	Debug     string `toml:"debug"`
	DebugHard string `toml:"debug_hard"`
	DebugMare string `toml:"debug_mare"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	QueueSize: DefaultQueueSize,

	MaxWritesSinceReopen: DefaultMaxWritesSinceReopen,
	MaxOpenAgeUs:         DefaultMaxOpenAgeUs,
	FileMask:             DefaultFileMask,

	TimestampFormat: DefaultTimestampFormat,

	ReportOverflow:     true,
	HeartbeatIntervalS: 0,
	HeartbeatLevel:     "info",

	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [alog] table of a TOML file.
// args are passed to the loader as command-line overrides. A missing file
// yields the defaults.
func NewConfigFromFile(path string, args ...string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("alog.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, args); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "alog.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies loader values into cfg by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// TOML decoders hand back whole numbers as float64 in some paths
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c.QueueSize <= 0 || c.QueueSize > 1<<24 {
		return fmtErrorf("queue_size must be between 1 and %d: %d", 1<<24, c.QueueSize)
	}

	if c.MaxWritesSinceReopen <= 0 {
		return fmtErrorf("max_writes_since_reopen must be positive: %d", c.MaxWritesSinceReopen)
	}

	if c.MaxOpenAgeUs <= 0 {
		return fmtErrorf("max_open_age_us must be positive: %d", c.MaxOpenAgeUs)
	}

	if c.FileMask < 0 || c.FileMask > 0o777 {
		return fmtErrorf("file_mask must be between 0 and 0777: %o", c.FileMask)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.HeartbeatIntervalS < 0 {
		return fmtErrorf("heartbeat_interval_s cannot be negative: %d", c.HeartbeatIntervalS)
	}

	if _, err := ParseSeverity(c.HeartbeatLevel); err != nil {
		return fmtErrorf("invalid heartbeat_level: '%s'", c.HeartbeatLevel)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// levelFields returns the per-level compact settings indexed by Severity
func (c *Config) levelFields() [LevelCount]*string {
	return [LevelCount]*string{
		&c.Critical, &c.Error, &c.Warning, &c.Info,
		&c.Profile, &c.Debug, &c.DebugHard, &c.DebugMare,
	}
}

// SetLevel stores the compact destination settings for one level
func (c *Config) SetLevel(level Severity, settings string) error {
	if !level.Valid() {
		return fmtErrorf("invalid level: %d", int(level))
	}
	*c.levelFields()[level] = settings
	return nil
}

// Level returns the compact destination settings stored for one level
func (c *Config) Level(level Severity) string {
	if !level.Valid() {
		return ""
	}
	return *c.levelFields()[level]
}

// maxOpenAge returns the descriptor age limit as a duration
func (c *Config) maxOpenAge() time.Duration {
	return time.Duration(c.MaxOpenAgeUs) * time.Microsecond
}

// heartbeatSeverity returns the level heartbeat records are written at
func (c *Config) heartbeatSeverity() Severity {
	s, err := ParseSeverity(c.HeartbeatLevel)
	if err != nil {
		return LevelInfo
	}
	return s
}

// tableOptions converts the process-level knobs for the destination table
func (c *Config) tableOptions() destination.Options {
	return destination.Options{
		MaxWritesSinceReopen: uint64(c.MaxWritesSinceReopen),
		MaxOpenAge:           c.maxOpenAge(),
		FileMask:             os.FileMode(c.FileMask),
	}
}
