// Package config handles configuration loading, validation, and management for cellignore.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"cellignore/internal/profile"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Profiles maps "<driver>:<cells>" to 1-based ignored cell numbers.
	Profiles map[string]profile.CellList `toml:"profiles" json:"profiles" yaml:"profiles"`

	// Storage configuration for profile persistence.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Notify configuration for refresh notifications.
	Notify NotifyConfig `toml:"notify" json:"notify" yaml:"notify"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Type is the storage backend type: "file", "sqlite" or "memory".
	// "file" keeps profiles in the [profiles] table of the config file.
	Type string `toml:"type" json:"type" yaml:"type"`

	// Path is the path to the database file (for sqlite).
	Path string `toml:"path" json:"path" yaml:"path"`

	// BusyTimeoutMs is the SQLite busy timeout in milliseconds.
	BusyTimeoutMs int `toml:"busy_timeout_ms" json:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file" or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is the maximum age of log files in days.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress determines whether to compress rotated logs.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// NotifyConfig controls how profile edits reach the display.
type NotifyConfig struct {
	// DebounceMs delays reloads after the config file changes.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`

	// DBus exports the refresh entry point on the session bus.
	DBus bool `toml:"dbus" json:"dbus" yaml:"dbus"`

	// BusName is the well-known D-Bus name to request.
	BusName string `toml:"bus_name" json:"bus_name" yaml:"bus_name"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Version:  Version,
		Profiles: map[string]profile.CellList{},
		Storage: StorageConfig{
			Type:          "file",
			Path:          filepath.Join(dir, "profiles.db"),
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(dir, "cellignore.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Notify: NotifyConfig{
			DebounceMs: 100,
			DBus:       false,
			BusName:    "org.cellignore.Remapper",
		},
	}
}

// Dir returns the base configuration directory.
// CELLIGNORE_DIR overrides the platform default.
func Dir() string {
	if dir := os.Getenv("CELLIGNORE_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cellignore")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cellignore")
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	cfg.ApplyEnvOverrides()

	return cfg, nil
}

// LoadFile reads the configuration at path exactly as stored, without
// environment overrides. Use it when the result is written back.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	return loadConfigFromFile(path)
}

// loadConfigFromFile reads and parses a config file based on its extension.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if no config file exists
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()

	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}

	if cfg.Profiles == nil {
		cfg.Profiles = map[string]profile.CellList{}
	}
	return cfg, nil
}

// Save writes the configuration to path in the format implied by its
// extension. The file is replaced atomically.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := Encode(cfg, filepath.Ext(path))
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Encode serializes cfg as TOML, JSON (".json") or YAML (".yaml", ".yml").
func Encode(cfg *Config, ext string) ([]byte, error) {
	switch ext {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		return data, nil
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode TOML: %w", err)
	}
	return []byte(b.String()), nil
}

// ApplyEnvOverrides applies CELLIGNORE_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CELLIGNORE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CELLIGNORE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CELLIGNORE_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("CELLIGNORE_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CELLIGNORE_DBUS"); v != "" {
		c.Notify.DBus = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ProfileSet returns the configured profiles. Malformed keys are skipped.
func (c *Config) ProfileSet() profile.Set {
	return profile.FromMap(c.Profiles)
}

// SetProfiles replaces the profiles section, dropping empty profiles.
func (c *Config) SetProfiles(s profile.Set) {
	c.Profiles = s.ToMap()
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Profiles = make(map[string]profile.CellList, len(c.Profiles))
	for key, cells := range c.Profiles {
		out.Profiles[key] = slices.Clone(cells)
	}
	return &out
}
