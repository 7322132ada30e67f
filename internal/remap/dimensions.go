package remap

import "fmt"

// Cell is a single braille cell as an 8-dot pattern.
type Cell = uint8

// Blank is the cell value that raises no dots.
const Blank Cell = 0

// Dimensions is the shape of a braille buffer.
type Dimensions struct {
	Rows int
	Cols int
}

// Cells returns the total number of cells.
func (d Dimensions) Cells() int {
	if d.Rows <= 0 || d.Cols <= 0 {
		return 0
	}
	return d.Rows * d.Cols
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Rows, d.Cols)
}

// Device identifies a connected braille display. A profile is keyed by the
// pair of Name and Cells, so the same driver with a different cell count is
// a different device.
type Device struct {
	Name  string
	Cells int
	Rows  int
}

// Key returns the profile key "<name>:<cells>".
func (d Device) Key() string {
	return fmt.Sprintf("%s:%d", d.Name, d.Cells)
}

// Adjust returns the logical dimensions exposed upstream for a device of
// raw dimensions with the given ignored positions.
//
// Only single-row displays are remapped; anything else passes through.
// Ignored positions outside [0, raw.Cols) are not counted.
func Adjust(raw Dimensions, set IgnoredSet) Dimensions {
	if raw.Rows != 1 || set.Empty() {
		return raw
	}
	valid := set.CountBelow(raw.Cols)
	return Dimensions{Rows: 1, Cols: max(0, raw.Cols-valid)}
}
