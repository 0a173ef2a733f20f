package alog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyConfigString applies string key-value overrides to the logger's current configuration.
// Each override should be in the format "key=value". Level keys take the
// compact destination form.
//
// Example:
//
//	logger := alog.NewLogger()
//	err := logger.ApplyConfigString(
//	    "queue_size=8192",
//	    `error=enabled, no_ansi_colors, file "/var/log/app.err"`,
//	    "debug=disabled",
//	)
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := l.getConfig().Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	return l.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("alog: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "alog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config
func applyConfigField(cfg *Config, key, value string) error {
	if level, err := ParseSeverity(key); err == nil && key == level.String() {
		return cfg.SetLevel(level, value)
	}

	switch key {
	case "queue_size":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for queue_size '%s': %w", value, err)
		}
		cfg.QueueSize = intVal

	case "max_writes_since_reopen":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_writes_since_reopen '%s': %w", value, err)
		}
		cfg.MaxWritesSinceReopen = intVal
	case "max_open_age_us":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_open_age_us '%s': %w", value, err)
		}
		cfg.MaxOpenAgeUs = intVal
	case "file_mask":
		// Octal with a leading 0 or 0o, decimal otherwise
		intVal, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for file_mask '%s': %w", value, err)
		}
		cfg.FileMask = intVal

	case "timestamp_format":
		cfg.TimestampFormat = value

	case "report_overflow":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for report_overflow '%s': %w", value, err)
		}
		cfg.ReportOverflow = boolVal
	case "heartbeat_interval_s":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for heartbeat_interval_s '%s': %w", value, err)
		}
		cfg.HeartbeatIntervalS = intVal
	case "heartbeat_level":
		cfg.HeartbeatLevel = value

	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
