// Package logging provides structured logging with slog for cellignore.
//
// Features:
//   - JSON and text output formats
//   - Log levels (debug, info, warn, error)
//   - Per-component loggers
//   - Size-based log rotation with optional gzip compression
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"cellignore/internal/config"
)

// Level represents a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or JSON).
	Format Format

	// Output specifies where logs are written.
	// Can be "stdout", "stderr", "file", or "both".
	Output string

	// FilePath is the path to the log file when Output includes "file".
	FilePath string

	// MaxSizeBytes is the log file size that triggers rotation.
	MaxSizeBytes int64

	// MaxAgeDays is the maximum age of rotated files before deletion.
	MaxAgeDays int

	// MaxBackups is the maximum number of rotated log files to keep.
	MaxBackups int

	// Compress gzips rotated files.
	Compress bool

	// AddSource adds source file and line to log entries.
	AddSource bool

	// Component is the name of the component using this logger.
	Component string
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:     LevelInfo,
		Format:    FormatText,
		Output:    "stderr",
		Component: "cellignore",
	}
}

// FromConfig converts the [logging] section of the configuration file.
func FromConfig(lc config.LoggingConfig) (*Config, error) {
	level, err := ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Level = level
	if strings.EqualFold(lc.Format, "json") {
		cfg.Format = FormatJSON
	}
	if lc.Output != "" {
		cfg.Output = lc.Output
	}
	cfg.FilePath = lc.FilePath
	cfg.MaxSizeBytes = int64(lc.MaxSizeMB) * 1024 * 1024
	cfg.MaxBackups = lc.MaxBackups
	cfg.MaxAgeDays = lc.MaxAgeDays
	cfg.Compress = lc.Compress
	return cfg, nil
}

// Logger wraps slog.Logger with the file it may own.
type Logger struct {
	*slog.Logger
	// base is the handler before the component attribute is added.
	base    slog.Handler
	config  *Config
	rotator *FileRotator
	mu      sync.Mutex
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Default returns the default global logger.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		h := slog.Default().Handler()
		defaultLogger = &Logger{Logger: slog.New(h), base: h, config: DefaultConfig()}
	}
	return defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	slog.SetDefault(l.Logger)
}

// New creates a new Logger with the given configuration.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{config: cfg}
	w, err := l.output()
	if err != nil {
		return nil, fmt.Errorf("setup writers: %w", err)
	}
	l.base = newHandler(w, cfg)
	l.Logger = slog.New(withComponent(l.base, cfg.Component))
	return l, nil
}

// NewWriter creates a logger writing to w, ignoring cfg.Output.
func NewWriter(w io.Writer, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	base := newHandler(w, cfg)
	return &Logger{Logger: slog.New(withComponent(base, cfg.Component)), base: base, config: cfg}
}

func newHandler(w io.Writer, cfg *Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return handler
}

func withComponent(h slog.Handler, name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.WithAttrs([]slog.Attr{slog.String("component", name)})
}

// output opens the writers named by the configuration.
func (l *Logger) output() (io.Writer, error) {
	switch strings.ToLower(l.config.Output) {
	case "stdout":
		return os.Stdout, nil
	case "file", "both":
		rotator, err := NewFileRotator(l.config)
		if err != nil {
			return nil, err
		}
		l.rotator = rotator
		if strings.EqualFold(l.config.Output, "both") {
			return io.MultiWriter(os.Stderr, rotator), nil
		}
		return rotator, nil
	default:
		return os.Stderr, nil
	}
}

// WithComponent returns a new logger whose component attribute is name
// instead of the configured one.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger:  slog.New(withComponent(l.base, name)),
		base:    l.base,
		config:  l.config,
		rotator: l.rotator,
	}
}

// Close closes any open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// ParseLevel parses a string into a log level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// LevelString returns the string representation of a log level.
func LevelString(level Level) string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}
