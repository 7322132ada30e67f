package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellignore/internal/engine"
	"cellignore/internal/hostsim"
	"cellignore/internal/remap"
)

// fakeSource serves a mutable ignored list for one device key.
type fakeSource struct {
	key     string
	ignored []int
	calls   int
}

func (s *fakeSource) IgnoredPositions(dev remap.Device) []int {
	s.calls++
	if dev.Key() != s.key {
		return nil
	}
	return s.ignored
}

var focus8 = remap.Device{Name: "focus", Cells: 8, Rows: 1}

func setup(t *testing.T, ignored ...int) (*engine.Engine, *hostsim.Display, *fakeSource) {
	t.Helper()
	display := hostsim.New()
	display.Connect(focus8)
	src := &fakeSource{key: focus8.Key(), ignored: ignored}
	return engine.New(display, src), display, src
}

func TestEnableRemapsImmediately(t *testing.T) {
	e, display, _ := setup(t, 2, 5)
	display.SetText("abcdefgh")
	require.Equal(t, hostsim.Encode("abcdefgh"), display.LastWritten())

	e.Enable()
	require.True(t, e.Registered())
	assert.Equal(t, remap.Dimensions{Rows: 1, Cols: 6}, display.Dimensions())

	// Spaces encode as blank cells.
	assert.Equal(t, hostsim.Encode("ab cd ef"), display.LastWritten())
	assert.Equal(t, []int{2, 5}, e.Snapshot().Positions())
}

func TestEnableDisableIdempotent(t *testing.T) {
	e, display, _ := setup(t, 0)
	display.SetText("abc")
	writes := len(display.Written)

	e.Enable()
	e.Enable()
	assert.Len(t, display.Written, writes+1)

	e.Disable()
	e.Disable()
	assert.False(t, e.Registered())
	assert.Len(t, display.Written, writes+2)
	assert.Equal(t, remap.Dimensions{Rows: 1, Cols: 8}, display.Dimensions())
	assert.Equal(t, hostsim.Encode("abc     "), display.LastWritten())
}

func TestRefreshUsesNewSet(t *testing.T) {
	e, display, src := setup(t, 2, 5)
	e.Enable()
	display.SetText("abcdefgh")

	src.ignored = []int{0}
	// Nothing changes until the refresh is requested.
	display.Update()
	assert.Equal(t, remap.Blank, display.LastWritten()[2])

	e.RefreshIgnoredCells()
	assert.Equal(t, remap.Dimensions{Rows: 1, Cols: 7}, display.Dimensions())
	assert.Equal(t, []int{0}, e.Snapshot().Positions())
	got := display.LastWritten()
	assert.Equal(t, remap.Blank, got[0])
	assert.Equal(t, hostsim.Encode("abcdefg"), got[1:])
}

func TestRefreshQueriesAndWritesOnce(t *testing.T) {
	e, display, src := setup(t, 2, 5)
	e.Enable()
	display.SetText("abcdefgh")

	queries, writes, calls := display.Queries, len(display.Written), src.calls
	e.RefreshIgnoredCells()

	assert.Equal(t, queries+1, display.Queries)
	assert.Len(t, display.Written, writes+1)
	assert.Equal(t, calls+1, src.calls)
}

func TestRefreshWithoutDisplay(t *testing.T) {
	display := hostsim.New()
	src := &fakeSource{key: focus8.Key(), ignored: []int{1}}
	e := engine.New(display, src)
	e.Enable()
	e.RefreshIgnoredCells()
	assert.Zero(t, src.calls)
	assert.Empty(t, display.Written)
}

func TestPreWriteSeesLogicalBuffer(t *testing.T) {
	e, display, _ := setup(t, 2, 5)
	e.Enable()
	display.SetText("abcdefgh")

	last := display.PreWrites[len(display.PreWrites)-1]
	assert.Equal(t, hostsim.Encode("abcdef"), last.Cells)
	assert.Equal(t, 6, last.LogicalCount)
	assert.Len(t, display.LastWritten(), 8)
}

func TestRouting(t *testing.T) {
	e, display, _ := setup(t, 2, 5)
	e.Enable()
	display.SetText("abcdefgh")

	for _, p := range []int{0, 2, 3, 5, 6} {
		display.Press(p)
	}
	assert.Equal(t, []int{0, 2, 4}, display.Routed)

	_, ok := e.RoutingIndex(4, false)
	assert.False(t, ok)
	pos, ok := e.RoutingIndex(7, true)
	assert.True(t, ok)
	assert.Equal(t, 5, pos)

	e.Route(display, 1)
	assert.Equal(t, []int{0, 2, 4, 1}, display.Routed)
}

func TestRoutingAfterDisable(t *testing.T) {
	e, display, _ := setup(t, 2, 5)
	e.Enable()
	e.Disable()
	display.Press(2)
	assert.Equal(t, []int{2}, display.Routed)
}

func TestMultiRowBypass(t *testing.T) {
	display := hostsim.New()
	dev := remap.Device{Name: "canute", Cells: 40, Rows: 4}
	display.Connect(dev)
	src := &fakeSource{key: dev.Key(), ignored: []int{0, 1}}
	e := engine.New(display, src)
	e.Enable()
	display.SetText("abc")

	assert.Equal(t, remap.Dimensions{Rows: 4, Cols: 10}, display.Dimensions())
	got := display.LastWritten()
	require.Len(t, got, 40)
	assert.Equal(t, hostsim.Encode("abc"), got[:3])

	display.Press(1)
	assert.Equal(t, []int{1}, display.Routed)
}

func TestOutOfRangeIgnored(t *testing.T) {
	e, display, _ := setup(t, 3, 40)
	e.Enable()
	display.SetText("abcdefgh")
	assert.Equal(t, 7, display.Dimensions().Cols)
	assert.Len(t, display.LastWritten(), 8)
}

func TestTransmitError(t *testing.T) {
	e, display, _ := setup(t, 1)
	e.Enable()
	errBusy := errors.New("port busy")
	display.TransmitErr = errBusy
	display.SetText("abc")
	require.Len(t, display.Unavailable, 1)
	assert.ErrorIs(t, display.Unavailable[0], errBusy)
}

func TestZeroCellDevice(t *testing.T) {
	display := hostsim.New()
	display.Connect(remap.Device{Name: "noBraille", Cells: 0})
	e := engine.New(display, engine.SourceFunc(func(remap.Device) []int { return []int{0} }))
	e.Enable()
	display.SetText("abc")
	assert.Equal(t, 0, display.Dimensions().Cols)
	assert.Empty(t, display.Written)
	assert.NotEmpty(t, display.PreWrites)
}

func TestNilSource(t *testing.T) {
	display := hostsim.New()
	display.Connect(focus8)
	e := engine.New(display, nil)
	e.Enable()
	assert.True(t, e.Snapshot().Empty())
	assert.Equal(t, 8, display.Dimensions().Cols)
}
