package store

import (
	"sync"

	"cellignore/internal/profile"
)

// MemoryStore keeps profiles in memory only.
type MemoryStore struct {
	mu  sync.Mutex
	set profile.Set
}

// NewMemoryStore returns a store holding a copy of initial.
func NewMemoryStore(initial profile.Set) *MemoryStore {
	if initial == nil {
		initial = profile.Set{}
	}
	return &MemoryStore{set: initial.Pruned()}
}

// Load implements Store.
func (m *MemoryStore) Load() (profile.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone(), nil
}

// Save implements Store.
func (m *MemoryStore) Save(s profile.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = s.Pruned()
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
