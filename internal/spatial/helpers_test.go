package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

func fx(v int) geom.Fixed { return geom.FromInt(v) }

// openLevel is a 4x4 grid of 128-unit cells at the origin with a single
// sector and no lines.
func openLevel(t *testing.T) *level.Level {
	t.Helper()
	b := level.NewBuilder().Grid(0, 0, 4, 4)
	b.Sector("open", 0, 128)
	lvl, err := b.Build()
	require.NoError(t, err)
	return lvl
}

// twoRoomLevel splits a 512x512 square at x=256 into sector 0 (west) and
// sector 1 (east) with a two-sided divider.
func twoRoomLevel(t *testing.T) *level.Level {
	t.Helper()
	b := level.NewBuilder().Grid(0, 0, 4, 4)
	west := b.Sector("west", 0, 128)
	east := b.Sector("east", 0, 128)
	v00 := b.Vertex(0, 0)
	v20 := b.Vertex(256, 0)
	v40 := b.Vertex(512, 0)
	v04 := b.Vertex(0, 512)
	v24 := b.Vertex(256, 512)
	v44 := b.Vertex(512, 512)
	// Clockwise around each room so the interior is on the front side.
	b.Line(v00, v04, west, -1, level.LineBlocking)
	b.Line(v04, v24, west, -1, level.LineBlocking)
	b.Line(v24, v44, east, -1, level.LineBlocking)
	b.Line(v44, v40, east, -1, level.LineBlocking)
	b.Line(v40, v20, east, -1, level.LineBlocking)
	b.Line(v20, v00, west, -1, level.LineBlocking)
	b.Line(v24, v20, west, east, 0)
	lvl, err := b.Build()
	require.NoError(t, err)
	return lvl
}

func newIndex(t *testing.T, lvl *level.Level) *Index {
	t.Helper()
	return New(lvl, Options{}, zap.NewNop())
}

func newObservedIndex(t *testing.T, lvl *level.Level, opts Options) (*Index, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return New(lvl, opts, zap.New(core)), logs
}

func newActor(x, y, radius int) *Actor {
	return &Actor{X: fx(x), Y: fx(y), Radius: fx(radius), Height: fx(56)}
}

// cellSet lists the cells an actor occupies as (x,y) pairs.
func cellSet(ix *Index, a *Actor) [][2]int {
	var out [][2]int
	for _, c := range ix.ActorCells(a) {
		out = append(out, [2]int{c % ix.grid.Width, c / ix.grid.Width})
	}
	return out
}

func rangeCells(x1, y1, x2, y2 int) [][2]int {
	var out [][2]int
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			out = append(out, [2]int{x, y})
		}
	}
	return out
}

// snapshot captures every cell list and sector list so tests can compare
// the index before and after a mutation.
type snapshot struct {
	cells   [][]*Actor
	sectors [][]*Actor
}

func takeSnapshot(ix *Index) snapshot {
	var s snapshot
	for y := 0; y < ix.grid.Height; y++ {
		for x := 0; x < ix.grid.Width; x++ {
			s.cells = append(s.cells, ix.CellActors(x, y))
		}
	}
	for _, sec := range ix.lvl.Sectors {
		var list []*Actor
		ix.SectorActors(sec, func(a *Actor) bool {
			list = append(list, a)
			return true
		})
		s.sectors = append(s.sectors, list)
	}
	return s
}

func collectActors(it *BlockActorsIterator) []*Actor {
	var out []*Actor
	for a := it.Next(); a != nil; a = it.Next() {
		out = append(out, a)
	}
	return out
}

func collectLines(it *BlockLinesIterator) []*level.Line {
	var out []*level.Line
	for ld := it.Next(); ld != nil; ld = it.Next() {
		out = append(out, ld)
	}
	return out
}
