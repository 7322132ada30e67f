package store

import (
	"fmt"
	"sync"

	"cellignore/internal/profile"
	"cellignore/internal/remap"
)

// Provider holds the current profile set for the remapping engine. The set
// may be replaced from another goroutine, such as a config watcher.
type Provider struct {
	mu    sync.RWMutex
	set   profile.Set
	store Store
}

// NewProvider loads the initial set from s.
func NewProvider(s Store) (*Provider, error) {
	p := &Provider{store: s}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// IgnoredPositions returns the 0-based ignored positions for dev.
func (p *Provider) IgnoredPositions(dev remap.Device) []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.set.IgnoredPositions(dev)
}

// Profiles returns a copy of the current set.
func (p *Provider) Profiles() profile.Set {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.set.Clone()
}

// Replace swaps in a new set without saving it.
func (p *Provider) Replace(s profile.Set) {
	p.mu.Lock()
	p.set = s.Clone()
	p.mu.Unlock()
}

// Reload re-reads the set from the store.
func (p *Provider) Reload() error {
	s, err := p.store.Load()
	if err != nil {
		return fmt.Errorf("reload profiles: %w", err)
	}
	p.Replace(s)
	return nil
}

// Update applies fn to a copy of the set, saves it and makes it current.
func (p *Provider) Update(fn func(profile.Set) error) error {
	next := p.Profiles()
	if err := fn(next); err != nil {
		return err
	}
	if err := p.store.Save(next); err != nil {
		return err
	}
	p.Replace(next.Pruned())
	return nil
}
