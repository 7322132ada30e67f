// Package hostsim is an in-memory screen reader display handler. It plays
// the host side of engine.Host and engine.Handler for the command-line
// tools and for tests.
package hostsim

import (
	"cellignore/internal/engine"
	"cellignore/internal/remap"
)

// PreWrite records one pre-write notification.
type PreWrite struct {
	Cells        []remap.Cell
	LogicalCount int
}

// Display simulates a braille handler with one connected display.
type Display struct {
	device    remap.Device
	connected bool
	hooks     engine.Hooks
	cached    *remap.Dimensions
	content   []remap.Cell
	window    int

	// TransmitErr, when set, is returned by the next Transmit.
	TransmitErr error

	Written     [][]remap.Cell
	PreWrites   []PreWrite
	Routed      []int
	Unavailable []error
	Queries     int
}

var (
	_ engine.Host    = (*Display)(nil)
	_ engine.Handler = (*Display)(nil)
)

// New returns a display handler with nothing connected.
func New() *Display {
	return &Display{}
}

// Connect attaches dev. Rows defaults to 1.
func (d *Display) Connect(dev remap.Device) {
	if dev.Rows <= 0 {
		dev.Rows = 1
	}
	d.device = dev
	d.connected = true
	d.cached = nil
}

// Disconnect detaches the display.
func (d *Display) Disconnect() {
	d.device = remap.Device{}
	d.connected = false
	d.cached = nil
}

// Install implements engine.Host.
func (d *Display) Install(hooks engine.Hooks) {
	d.hooks = hooks
}

// Uninstall implements engine.Host.
func (d *Display) Uninstall() {
	d.hooks = nil
}

// HasDisplay implements engine.Host.
func (d *Display) HasDisplay() bool {
	return d.connected
}

// InvalidateDimensions implements engine.Host.
func (d *Display) InvalidateDimensions() {
	d.cached = nil
}

// QueryDimensions implements engine.Host. The result is cached until the
// next invalidation or reconnect.
func (d *Display) QueryDimensions() remap.Dimensions {
	if d.cached != nil {
		return *d.cached
	}
	d.Queries++
	var dims remap.Dimensions
	if d.connected {
		dims = remap.Dimensions{Rows: d.device.Rows, Cols: d.device.Cells / d.device.Rows}
	}
	if d.hooks != nil {
		dims = d.hooks.FilterDimensions(d.device, dims)
	}
	d.cached = &dims
	return dims
}

// Device implements engine.Handler.
func (d *Display) Device() (remap.Device, bool) {
	return d.device, d.connected
}

// Dimensions implements engine.Handler.
func (d *Display) Dimensions() remap.Dimensions {
	return d.QueryDimensions()
}

// SetText replaces the content and redraws it.
func (d *Display) SetText(text string) {
	d.content = Encode(text)
	d.window = 0
	d.Update()
}

// Content returns the encoded content.
func (d *Display) Content() []remap.Cell {
	return d.content
}

// Window returns the content offset of the first logical cell.
func (d *Display) Window() int {
	return d.window
}

// Pan scrolls the window forward or back by one display length.
func (d *Display) Pan(forward bool) {
	size := d.Dimensions().Cells()
	if size == 0 {
		return
	}
	switch {
	case forward && d.window+size < len(d.content):
		d.window += size
	case !forward:
		d.window = max(0, d.window-size)
	}
	d.Update()
}

// Update implements engine.Host by writing the visible window.
func (d *Display) Update() {
	size := d.Dimensions().Cells()
	start := min(d.window, len(d.content))
	end := min(start+size, len(d.content))
	cells := append([]remap.Cell(nil), d.content[start:end]...)
	if d.hooks != nil {
		d.hooks.WriteCells(d, cells)
		return
	}
	d.writeCells(cells)
}

// writeCells is the handler's own write path, used when no hooks are
// installed.
func (d *Display) writeCells(cells []remap.Cell) {
	logical := d.Dimensions()
	d.NotifyPreWrite(cells, logical.Cells())
	if !d.connected || d.device.Cells <= 0 {
		return
	}
	physical := remap.Dimensions{Rows: d.device.Rows, Cols: d.device.Cells / d.device.Rows}
	if err := d.Transmit(d.NormalizeCells(cells, logical, physical)); err != nil {
		d.DisplayUnavailable(err)
	}
}

// NotifyPreWrite implements engine.Handler.
func (d *Display) NotifyPreWrite(cells []remap.Cell, logicalCount int) {
	d.PreWrites = append(d.PreWrites, PreWrite{
		Cells:        append([]remap.Cell(nil), cells...),
		LogicalCount: logicalCount,
	})
}

// NormalizeCells implements engine.Handler. Cells are laid out row by row;
// each row is cut or padded to the target width and missing rows are
// blank.
func (d *Display) NormalizeCells(cells []remap.Cell, from, to remap.Dimensions) []remap.Cell {
	out := make([]remap.Cell, to.Cells())
	if from.Cols <= 0 {
		return out
	}
	for r := 0; r < to.Rows; r++ {
		for c := 0; c < min(from.Cols, to.Cols); c++ {
			i := r*from.Cols + c
			if r >= from.Rows || i >= len(cells) {
				break
			}
			out[r*to.Cols+c] = cells[i]
		}
	}
	return out
}

// Transmit implements engine.Handler.
func (d *Display) Transmit(cells []remap.Cell) error {
	if err := d.TransmitErr; err != nil {
		d.TransmitErr = nil
		return err
	}
	d.Written = append(d.Written, append([]remap.Cell(nil), cells...))
	return nil
}

// DisplayUnavailable implements engine.Handler.
func (d *Display) DisplayUnavailable(err error) {
	d.Unavailable = append(d.Unavailable, err)
}

// RouteTo implements engine.Handler; pos is relative to the window.
func (d *Display) RouteTo(pos int) {
	d.Routed = append(d.Routed, d.window+pos)
}

// Press simulates the routing key at a physical position.
func (d *Display) Press(physical int) {
	if d.hooks == nil {
		d.RouteTo(physical)
		return
	}
	pos, ok := d.hooks.RoutingIndex(physical, true)
	d.hooks.RouteTo(d, pos, ok)
}

// LastWritten returns the most recent transmitted buffer.
func (d *Display) LastWritten() []remap.Cell {
	if len(d.Written) == 0 {
		return nil
	}
	return d.Written[len(d.Written)-1]
}
