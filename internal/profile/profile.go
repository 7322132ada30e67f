// Package profile holds the ignored-cell profiles configured per braille
// display. A profile is keyed by driver name and cell count and stores
// 1-based cell numbers, the way users count cells on the device.
package profile

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cellignore/internal/remap"
)

// NoBraille is the driver name used when no display is connected.
const NoBraille = "noBraille"

// ErrInvalidKey is returned for keys not of the form "<driver>:<cells>".
var ErrInvalidKey = errors.New("profile: invalid key")

// Profile lists the ignored cells of one display model.
type Profile struct {
	Driver   string
	NumCells int
	Ignored  CellList
}

// Key formats a profile key.
func Key(driver string, numCells int) string {
	return fmt.Sprintf("%s:%d", driver, numCells)
}

// ParseKey splits a profile key at its first colon.
func ParseKey(key string) (driver string, numCells int, err error) {
	name, cells, ok := strings.Cut(key, ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(cells))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	return strings.TrimSpace(name), n, nil
}

// New builds a profile from a key and 1-based cells.
func New(key string, cells CellList) (Profile, error) {
	driver, n, err := ParseKey(key)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Driver: driver, NumCells: n, Ignored: NewCellList(cells...)}, nil
}

// Key returns the profile's key.
func (p Profile) Key() string {
	return Key(p.Driver, p.NumCells)
}

// Empty reports whether the profile ignores nothing.
func (p Profile) Empty() bool {
	return len(p.Ignored) == 0
}

// ZeroBased returns the ignored cells as 0-based positions. Numbers below 1
// are dropped; numbers past the end of the display are kept and left for
// the remapper to discard.
func (p Profile) ZeroBased() []int {
	out := make([]int, 0, len(p.Ignored))
	for _, c := range p.Ignored {
		if c > 0 {
			out = append(out, c-1)
		}
	}
	return out
}

// Matches reports whether the profile belongs to dev.
func (p Profile) Matches(dev remap.Device) bool {
	return p.Driver == dev.Name && p.NumCells == dev.Cells
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	p.Ignored = slices.Clone(p.Ignored)
	return p
}
