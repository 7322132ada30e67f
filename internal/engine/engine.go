// Package engine coordinates ignored braille cells with a screen reader
// host. It owns the ignored-set snapshot and serves the host's dimension,
// write and routing hooks from it.
//
// The engine is not safe for concurrent use: every method must be called
// from the host's loop. Background sources request refreshes through
// notify.Scheduler instead of calling the engine directly.
package engine

import (
	"log/slog"

	"cellignore/internal/remap"
)

// Engine remaps a display's ignored cells for a host.
type Engine struct {
	host       Host
	source     Source
	log        *slog.Logger
	snapshot   remap.IgnoredSet
	singleRow  bool
	registered bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Callers name the component, for
// example with logging.Logger.WithComponent.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an unregistered engine.
func New(host Host, source Source, opts ...Option) *Engine {
	e := &Engine{
		host:   host,
		source: source,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registered reports whether the hooks are installed.
func (e *Engine) Registered() bool {
	return e.registered
}

// Snapshot returns the ignored set taken at the last dimension query.
func (e *Engine) Snapshot() remap.IgnoredSet {
	return e.snapshot
}

// Enable installs the hooks and refreshes the display. Repeated calls are
// no-ops.
func (e *Engine) Enable() {
	if e.registered {
		return
	}
	e.host.Install(e)
	e.registered = true
	e.log.Debug("hooks installed")
	e.refresh()
}

// Disable removes the hooks and refreshes the display so it reverts to
// unmodified output. Repeated calls are no-ops.
func (e *Engine) Disable() {
	if !e.registered {
		return
	}
	e.host.Uninstall()
	e.registered = false
	e.log.Debug("hooks removed")
	e.refresh()
}

// RefreshIgnoredCells is called after the ignored cells were edited. It
// only forces a refresh cycle; the new set is read at the next dimension
// query.
func (e *Engine) RefreshIgnoredCells() {
	e.refresh()
}

func (e *Engine) refresh() {
	if !e.host.HasDisplay() {
		return
	}
	e.host.InvalidateDimensions()
	_ = e.host.QueryDimensions()
	e.host.Update()
}

// FilterDimensions takes a new snapshot for dev and returns the adjusted
// dimensions. It is the only place the snapshot changes.
func (e *Engine) FilterDimensions(dev remap.Device, raw remap.Dimensions) remap.Dimensions {
	var positions []int
	if e.source != nil {
		positions = e.source.IgnoredPositions(dev)
	}
	next := remap.NewIgnoredSet(positions...)
	if !next.Equal(e.snapshot) {
		e.log.Debug("ignored cells changed",
			slog.String("device", dev.Key()),
			slog.String("ignored", next.String()))
	}
	e.snapshot = next
	e.singleRow = raw.Rows == 1
	return remap.Adjust(raw, next)
}

// WriteCells writes a logical buffer to h's display, inserting blank cells
// at ignored positions. Pre-write notifications always see the unmodified
// buffer.
func (e *Engine) WriteCells(h Handler, cells []remap.Cell) {
	logical := h.Dimensions()
	h.NotifyPreWrite(cells, logical.Cells())

	dev, ok := h.Device()
	if !ok || dev.Cells <= 0 {
		return
	}
	rows := max(1, dev.Rows)
	physical := remap.Dimensions{Rows: rows, Cols: dev.Cells / rows}

	var out []remap.Cell
	if !e.snapshot.Empty() && logical.Rows == 1 {
		out = h.NormalizeCells(cells, logical, logical)
		out = remap.ToPhysical(out, dev.Cells, e.snapshot)
	} else {
		out = h.NormalizeCells(cells, logical, physical)
	}

	if err := h.Transmit(out); err != nil {
		e.log.Error("display cells", slog.String("device", dev.Key()), slog.Any("error", err))
		h.DisplayUnavailable(err)
	}
}

// RoutingIndex translates a physical routing position with the current
// snapshot. Multi-row displays are not remapped, so their positions pass
// through unchanged.
func (e *Engine) RoutingIndex(physical int, present bool) (int, bool) {
	if !e.singleRow {
		return physical, present
	}
	return remap.TranslateRouting(physical, present, e.snapshot)
}

// RouteTo routes h to pos. A missing position comes from an ignored cell
// and is dropped.
func (e *Engine) RouteTo(h Handler, pos int, ok bool) {
	if !ok {
		e.log.Debug("routing on ignored cell dropped")
		return
	}
	h.RouteTo(pos)
}

// Route handles a raw routing key press at a physical position.
func (e *Engine) Route(h Handler, physical int) {
	pos, ok := e.RoutingIndex(physical, true)
	e.RouteTo(h, pos, ok)
}
