package engine

import "cellignore/internal/remap"

// Source supplies the ignored positions configured for a device.
// Positions are 0-based; values beyond the device are tolerated.
type Source interface {
	IgnoredPositions(dev remap.Device) []int
}

// SourceFunc adapts a function to Source.
type SourceFunc func(dev remap.Device) []int

// IgnoredPositions calls f(dev).
func (f SourceFunc) IgnoredPositions(dev remap.Device) []int {
	return f(dev)
}

// Hooks are the extension points the engine installs into a host. The host
// calls them from its own loop; they never block.
type Hooks interface {
	// FilterDimensions returns the dimensions to expose for dev.
	FilterDimensions(dev remap.Device, raw remap.Dimensions) remap.Dimensions

	// WriteCells replaces the host's write of a logical buffer.
	WriteCells(h Handler, cells []remap.Cell)

	// RoutingIndex translates a physical routing position.
	RoutingIndex(physical int, present bool) (int, bool)

	// RouteTo routes to a logical position, ignoring missing ones.
	RouteTo(h Handler, pos int, ok bool)
}

// Host is the screen reader side the engine registers with.
type Host interface {
	Install(hooks Hooks)
	Uninstall()

	// HasDisplay reports whether a handler with a display is active.
	HasDisplay() bool

	// InvalidateDimensions drops any cached dimension value.
	InvalidateDimensions()

	// QueryDimensions re-reads dimensions, running any installed filter.
	QueryDimensions() remap.Dimensions

	// Update re-renders the current content.
	Update()
}

// Handler is the display handler seen by the write and routing hooks.
type Handler interface {
	// Device returns the connected display, or false when there is none.
	Device() (remap.Device, bool)

	// Dimensions returns the logical dimensions currently in effect.
	Dimensions() remap.Dimensions

	// NotifyPreWrite runs the host's pre-write notifications.
	NotifyPreWrite(cells []remap.Cell, logicalCount int)

	// NormalizeCells resizes cells from one buffer shape to another.
	NormalizeCells(cells []remap.Cell, from, to remap.Dimensions) []remap.Cell

	// Transmit sends a physical buffer to the display.
	Transmit(cells []remap.Cell) error

	// DisplayUnavailable is told about a failed transmission.
	DisplayUnavailable(err error)

	// RouteTo moves the cursor to a logical window position.
	RouteTo(pos int)
}
