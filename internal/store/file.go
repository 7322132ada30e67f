package store

import (
	"fmt"
	"os"
	"path/filepath"

	"cellignore/internal/config"
	"cellignore/internal/profile"
)

// FileStore keeps profiles in the [profiles] section of the configuration
// file. Saving rewrites that section only, leaving environment overrides
// out of the file, under an exclusive lock on a
// sibling lock file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the configuration file at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = config.ConfigPath()
	}
	return &FileStore{path: path}
}

// Path returns the configuration file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load implements Store.
func (f *FileStore) Load() (profile.Set, error) {
	cfg, err := config.LoadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return cfg.ProfileSet(), nil
}

// Save implements Store.
func (f *FileStore) Save(s profile.Set) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	lock, err := os.OpenFile(f.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lock.Close()

	if err := lockFile(lock); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer unlockFile(lock)

	cfg, err := config.LoadFile(f.path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SetProfiles(s)
	if err := config.Save(cfg, f.path); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}

// Close implements Store.
func (f *FileStore) Close() error {
	return nil
}
