package config

import (
	"fmt"
	"strings"

	"cellignore/internal/profile"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateProfiles(c.Profiles)...)
	errs = append(errs, validateStorage(&c.Storage)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	errs = append(errs, validateNotify(&c.Notify)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateProfiles checks keys only. Cell numbers outside the display are
// stale rather than invalid and are filtered when the profile is applied.
func validateProfiles(profiles map[string]profile.CellList) ValidationErrors {
	var errs ValidationErrors
	for key := range profiles {
		driver, cells, err := profile.ParseKey(key)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("profiles[%q]", key),
				Message: "key must have the form <driver>:<cells>",
			})
		case driver == "":
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("profiles[%q]", key),
				Message: "driver name cannot be empty",
			})
		case cells <= 0:
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("profiles[%q]", key),
				Message: "cell count must be positive",
			})
		}
	}
	return errs
}

func validateStorage(s *StorageConfig) ValidationErrors {
	var errs ValidationErrors

	switch s.Type {
	case "file", "memory":
	case "sqlite":
		if s.Path == "" {
			errs = append(errs, ValidationError{
				Field:   "storage.path",
				Message: "path is required for sqlite storage",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.type",
			Message: fmt.Sprintf("unknown storage type %q (valid: file, sqlite, memory)", s.Type),
		})
	}

	if s.BusyTimeoutMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.busy_timeout_ms",
			Message: "busy timeout cannot be negative",
		})
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q", l.Level),
		})
	}

	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q (valid: text, json)", l.Format),
		})
	}

	switch strings.ToLower(l.Output) {
	case "stdout", "stderr":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "file path is required when logging to a file",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid output %q", l.Output),
		})
	}

	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging",
			Message: "rotation limits cannot be negative",
		})
	}
	return errs
}

func validateNotify(n *NotifyConfig) ValidationErrors {
	var errs ValidationErrors

	if n.DebounceMs < 0 || n.DebounceMs > 10000 {
		errs = append(errs, ValidationError{
			Field:   "notify.debounce_ms",
			Message: "debounce must be between 0 and 10000ms",
		})
	}
	if n.DBus && n.BusName == "" {
		errs = append(errs, ValidationError{
			Field:   "notify.bus_name",
			Message: "bus name is required when D-Bus is enabled",
		})
	}
	return errs
}
