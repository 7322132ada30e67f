package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Loader handles configuration loading, watching, and hot-reloading.
type Loader struct {
	path     string
	config   *Config
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	ctx      context.Context
	cancel   context.CancelFunc
	errChan  chan error
	wg       sync.WaitGroup
}

// NewLoader creates a new configuration loader.
func NewLoader(path string) *Loader {
	if path == "" {
		path = ConfigPath()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		path:    path,
		errChan: make(chan error, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Path returns the watched configuration file.
func (l *Loader) Path() string {
	return l.path
}

// Load reads, validates and stores the configuration file.
func (l *Loader) Load() (*Config, error) {
	cfg, err := loadConfigFromFile(l.path)
	if err != nil {
		return nil, err
	}

	// Apply environment overrides
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Config returns the current configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// Watch starts watching the configuration file for changes.
// When changes are detected, the configuration is reloaded and
// registered callbacks are invoked.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	l.watcher = watcher

	// Watch the directory containing the config file; editors replace
	// files by rename, which drops a watch on the file itself.
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	l.wg.Add(1)
	go l.watchLoop()

	return nil
}

func (l *Loader) debounceDelay() time.Duration {
	if cfg := l.Config(); cfg != nil && cfg.Notify.DebounceMs > 0 {
		return time.Duration(cfg.Notify.DebounceMs) * time.Millisecond
	}
	return 100 * time.Millisecond
}

// watchLoop handles file system events.
func (l *Loader) watchLoop() {
	defer l.wg.Done()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-l.ctx.Done():
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}

			// Save writes a temp file and renames it over the config.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(l.debounceDelay(), l.reload)

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.sendErr(err)
		}
	}
}

func (l *Loader) sendErr(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// reload attempts to reload the configuration.
func (l *Loader) reload() {
	if l.ctx.Err() != nil {
		return
	}

	newCfg, err := loadConfigFromFile(l.path)
	if err != nil {
		l.sendErr(fmt.Errorf("reload config: %w", err))
		return
	}

	newCfg.ApplyEnvOverrides()

	// Validate before applying
	if err := newCfg.Validate(); err != nil {
		l.sendErr(fmt.Errorf("validate new config: %w", err))
		return
	}

	l.mu.Lock()
	l.config = newCfg
	callbacks := slices.Clone(l.onChange)
	l.mu.Unlock()

	for _, cb := range callbacks {
		cb(newCfg)
	}
}

// OnChange registers a callback to be invoked when the configuration changes.
// Callbacks run on the watcher's goroutine.
func (l *Loader) OnChange(cb func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, cb)
}

// Errors returns a channel for receiving errors that occur during watching.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Close stops the watcher and releases resources.
func (l *Loader) Close() error {
	l.cancel()
	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	l.wg.Wait()
	return err
}
