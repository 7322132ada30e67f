// Package remap maps braille cells between the logical buffer seen by the
// screen reader and the physical cells of a display with ignored positions.
//
// All functions in this package are pure: they take an IgnoredSet snapshot
// explicitly and keep no state between calls.
package remap

import (
	"fmt"
	"slices"
	"strings"
)

// IgnoredSet is an immutable, sorted set of 0-based physical positions.
// The zero value is an empty set.
type IgnoredSet struct {
	positions []int
}

// NewIgnoredSet builds a set from positions in any order. Negative values
// and duplicates are dropped.
func NewIgnoredSet(positions ...int) IgnoredSet {
	if len(positions) == 0 {
		return IgnoredSet{}
	}
	out := make([]int, 0, len(positions))
	for _, p := range positions {
		if p >= 0 {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return IgnoredSet{}
	}
	return IgnoredSet{positions: out}
}

// Empty reports whether no position is ignored.
func (s IgnoredSet) Empty() bool {
	return len(s.positions) == 0
}

// Len returns the number of ignored positions, including any that lie
// beyond the end of the current device.
func (s IgnoredSet) Len() int {
	return len(s.positions)
}

// Contains reports whether physical position p is ignored.
func (s IgnoredSet) Contains(p int) bool {
	_, found := slices.BinarySearch(s.positions, p)
	return found
}

// CountBelow returns the number of ignored positions strictly less than p.
func (s IgnoredSet) CountBelow(p int) int {
	i, _ := slices.BinarySearch(s.positions, p)
	return i
}

// Positions returns a copy of the ignored positions in ascending order.
func (s IgnoredSet) Positions() []int {
	return slices.Clone(s.positions)
}

// Equal reports whether both sets hold the same positions.
func (s IgnoredSet) Equal(other IgnoredSet) bool {
	return slices.Equal(s.positions, other.positions)
}

func (s IgnoredSet) String() string {
	parts := make([]string, len(s.positions))
	for i, p := range s.positions {
		parts[i] = fmt.Sprint(p)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
