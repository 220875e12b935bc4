package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
	"github.com/blocklink/worldindex/internal/spatial"
)

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(3)

	_, done := c.Sample(10, spatial.Stats{LinkedActors: 2, LiveNodes: 2, Traces: 2, Intercepts: 4})
	assert.False(t, done)
	c.RecordTargetAcquired()
	c.RecordSightBlocked()
	_, done = c.Sample(11, spatial.Stats{LinkedActors: 2, LiveNodes: 6, Traces: 3, Intercepts: 10})
	assert.False(t, done)
	c.RecordRemoved()
	ws, done := c.Sample(12, spatial.Stats{LinkedActors: 1, LiveNodes: 4, FreeNodes: 2, OccupiedCells: 4, Traces: 3, Intercepts: 10})
	require.True(t, done)

	assert.Equal(t, uint64(10), ws.WindowStartTick)
	assert.Equal(t, uint64(12), ws.WindowEndTick)
	assert.Equal(t, 1, ws.LinkedActors)
	assert.Equal(t, 2, ws.FreeNodes)
	assert.Equal(t, 4, ws.OccupiedCells)
	// Nodes per actor: 1, 3, 4.
	assert.InDelta(t, 8.0/3, ws.NodesPerActorMean, 1e-9)
	assert.InDelta(t, 1.5275, ws.NodesPerActorStd, 1e-3)
	// Two traces with 4 intercepts between them, then one trace with 6.
	assert.Equal(t, 3, ws.Traces)
	assert.InDelta(t, 4.0, ws.InterceptsPerTrace, 1e-9)
	assert.Equal(t, 6.0, ws.InterceptsPerTraceP90)
	assert.Equal(t, 1, ws.TargetsAcquired)
	assert.Equal(t, 1, ws.SightBlocked)
	assert.Equal(t, 1, ws.Removed)

	// Counters restart with the next window.
	c.Sample(13, spatial.Stats{Traces: 3, Intercepts: 10})
	c.Sample(14, spatial.Stats{Traces: 3, Intercepts: 10})
	ws, done = c.Sample(15, spatial.Stats{Traces: 3, Intercepts: 10})
	require.True(t, done)
	assert.Equal(t, uint64(13), ws.WindowStartTick)
	assert.Zero(t, ws.Traces)
	assert.Zero(t, ws.NodesPerActorMean)
	assert.Zero(t, ws.TargetsAcquired)
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)
	require.NoError(t, om.WriteWindow(WindowStats{WindowEndTick: 35, LinkedActors: 3}))
	require.NoError(t, om.WriteWindow(WindowStats{WindowEndTick: 70, LinkedActors: 2}))
	require.NoError(t, om.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "windows.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "window_end,linked,"))
	assert.True(t, strings.HasPrefix(lines[1], "35,3,"))
	assert.True(t, strings.HasPrefix(lines[2], "70,2,"))
}

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)
	assert.NoError(t, om.WriteWindow(WindowStats{}))
	assert.Empty(t, om.Dir())
	assert.NoError(t, om.Close())
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := level.NewBuilder().Grid(0, 0, 3, 3)
	b.Sector("s", 0, 128)
	lvl, err := b.Build()
	require.NoError(t, err)
	ix := spatial.New(lvl, spatial.Options{}, zap.NewNop())

	a := &spatial.Actor{X: geom.FromInt(128), Y: geom.FromInt(64), Radius: geom.FromInt(16), ID: 7}
	ghost := &spatial.Actor{X: geom.FromInt(300), Y: geom.FromInt(300), Radius: geom.FromInt(8), Flags: spatial.NoSector}
	idle := &spatial.Actor{}
	ix.Link(a)
	ix.Link(ghost)

	snap := TakeSnapshot(ix, "test", 42, []*spatial.Actor{a, ghost, idle})
	path := filepath.Join(t.TempDir(), "snap.msgpack")
	require.NoError(t, WriteSnapshot(path, snap))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	assert.Equal(t, 3, got.Width)
	assert.Equal(t, []uint16{1, 1, 0, 0, 0, 0, 0, 0, 1}, got.Cells)
	require.Len(t, got.Actors, 2)
	assert.Equal(t, uint64(7), got.Actors[0].ID)
	assert.Equal(t, 0, got.Actors[0].Sector)
	assert.Equal(t, []int{0, 1}, got.Actors[0].Cells)
	assert.Equal(t, -1, got.Actors[1].Sector)
}

func TestReadSnapshotVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.msgpack")
	require.NoError(t, WriteSnapshot(path, &Snapshot{Version: 99}))
	_, err := ReadSnapshot(path)
	assert.ErrorContains(t, err, "version 99")
}
