package profile

import (
	"maps"
	"slices"

	"cellignore/internal/remap"
)

// Set maps profile keys to profiles.
type Set map[string]Profile

// FromMap builds a set from the persisted key → cells layout. Entries with
// malformed keys are skipped.
func FromMap(m map[string]CellList) Set {
	set := make(Set, len(m))
	for key, cells := range m {
		p, err := New(key, cells)
		if err != nil {
			continue
		}
		set[p.Key()] = p
	}
	return set
}

// ToMap returns the persisted layout. Empty profiles are not saved.
func (s Set) ToMap() map[string]CellList {
	m := make(map[string]CellList, len(s))
	for key, p := range s {
		if p.Empty() {
			continue
		}
		m[key] = slices.Clone(p.Ignored)
	}
	return m
}

// Get returns the profile stored under key.
func (s Set) Get(key string) (Profile, bool) {
	p, ok := s[key]
	return p, ok
}

// Put stores p under its key.
func (s Set) Put(p Profile) {
	s[p.Key()] = p
}

// Remove deletes the profile under key and reports whether it existed.
func (s Set) Remove(key string) bool {
	if _, ok := s[key]; !ok {
		return false
	}
	delete(s, key)
	return true
}

// Keys returns the keys in sorted order.
func (s Set) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Pruned returns a copy without empty profiles.
func (s Set) Pruned() Set {
	out := make(Set, len(s))
	for key, p := range s {
		if !p.Empty() {
			out[key] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for key, p := range s {
		out[key] = p.Clone()
	}
	return out
}

// Active returns the profile for a connected display. There is none when
// no display is connected.
func (s Set) Active(dev remap.Device) (Profile, bool) {
	if dev.Name == "" || dev.Name == NoBraille || dev.Cells <= 0 {
		return Profile{}, false
	}
	return s.Get(dev.Key())
}

// IgnoredPositions returns the 0-based ignored positions for dev.
func (s Set) IgnoredPositions(dev remap.Device) []int {
	p, ok := s.Active(dev)
	if !ok {
		return nil
	}
	return p.ZeroBased()
}

// Historical returns the non-empty profiles other than current, sorted by
// key. These belong to displays that are not connected.
func (s Set) Historical(current string) []Profile {
	var out []Profile
	for _, key := range s.Keys() {
		p := s[key]
		if key == current || p.Empty() {
			continue
		}
		out = append(out, p)
	}
	return out
}
