// Package store persists ignored-cell profiles.
package store

import (
	"errors"
	"fmt"

	"cellignore/internal/config"
	"cellignore/internal/profile"
)

// ErrUnknownType is returned by Open for an unsupported storage type.
var ErrUnknownType = errors.New("store: unknown storage type")

// Store loads and saves the full profile set.
type Store interface {
	Load() (profile.Set, error)
	Save(profile.Set) error
	Close() error
}

// Open returns the backend selected by cfg.Storage. The file backend keeps
// profiles in the configuration file at configPath; the memory backend is
// seeded from cfg.
func Open(cfg *config.Config, configPath string) (Store, error) {
	switch cfg.Storage.Type {
	case "file", "":
		return NewFileStore(configPath), nil
	case "sqlite":
		s, err := OpenSQLite(cfg.Storage.Path, cfg.Storage.BusyTimeoutMs)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(cfg.ProfileSet()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Storage.Type)
}
