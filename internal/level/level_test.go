package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocklink/worldindex/internal/geom"
)

func fx(v int) geom.Fixed { return geom.FromInt(v) }

// squareRoom is a clockwise 256x256 room with a diagonal two-sided line
// cutting its north-east corner into a second sector.
func squareRoom(t *testing.T) *Level {
	t.Helper()
	b := NewBuilder()
	room := b.Sector("room", 0, 128)
	nook := b.Sector("nook", 16, 96)
	v0 := b.Vertex(0, 0)
	v1 := b.Vertex(0, 256)
	v2 := b.Vertex(128, 256)
	v3 := b.Vertex(256, 256)
	v4 := b.Vertex(256, 128)
	v5 := b.Vertex(256, 0)
	b.Line(v0, v1, room, -1, LineBlocking)
	b.Line(v1, v2, room, -1, LineBlocking)
	b.Line(v2, v3, nook, -1, LineBlocking)
	b.Line(v3, v4, nook, -1, LineBlocking)
	b.Line(v4, v5, room, -1, LineBlocking)
	b.Line(v5, v0, room, -1, LineBlocking)
	b.Line(v2, v4, room, nook, 0)
	lvl, err := b.Build()
	require.NoError(t, err)
	return lvl
}

func TestBuildDerivesGrid(t *testing.T) {
	lvl := squareRoom(t)
	bm := lvl.Blockmap
	assert.Equal(t, fx(-8), bm.OrgX)
	assert.Equal(t, fx(-8), bm.OrgY)
	assert.Equal(t, 3, bm.Width)
	assert.Equal(t, 3, bm.Height)
	assert.Len(t, bm.Cells, 9)

	diag := lvl.Lines[6]
	assert.Equal(t, fx(128), diag.Dx)
	assert.Equal(t, fx(-128), diag.Dy)
	assert.Equal(t, geom.Box{Left: fx(128), Right: fx(256), Bottom: fx(128), Top: fx(256)}, diag.BBox)
	assert.NotZero(t, diag.Flags&LineTwoSided)
	assert.False(t, diag.Blocks())
	assert.True(t, lvl.Lines[0].Blocks())
}

func TestCompileBlockmapSkipsMissedCells(t *testing.T) {
	lvl := squareRoom(t)
	bm := &lvl.Blockmap
	cellHas := func(x, y, line int) bool {
		for _, li := range bm.Cells[y*bm.Width+x] {
			if int(li) == line {
				return true
			}
		}
		return false
	}

	// The diagonal runs from (128,256) to (256,128): with the origin at -8
	// it crosses cells (1,1), (2,1) and (1,2) but misses (2,2), which its
	// bounding box also covers.
	assert.True(t, cellHas(1, 1, 6))
	assert.True(t, cellHas(2, 1, 6))
	assert.True(t, cellHas(1, 2, 6))
	assert.False(t, cellHas(2, 2, 6))

	// The west wall is axis-aligned and sits in every cell of column 0.
	for y := 0; y < 3; y++ {
		assert.True(t, cellHas(0, y, 0))
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("no sectors", func(t *testing.T) {
		_, err := NewBuilder().Build()
		assert.Error(t, err)
	})
	t.Run("bad references are joined", func(t *testing.T) {
		b := NewBuilder()
		s := b.Sector("s", 0, 0)
		b.Line(0, 9, s, -1, 0)
		b.Line(0, 0, 5, -1, 0)
		b.Poly(1, 42)
		_, err := b.Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vertex out of range")
		assert.Contains(t, err.Error(), "poly 1: line 42 out of range")
	})
	t.Run("coordinates out of range", func(t *testing.T) {
		b := NewBuilder()
		b.Sector("s", 0, 0)
		b.Vertex(0, 0)
		b.Vertex(40000, -5)
		b.Node(0, 0, 70000, 0, 0, 0)
		_, err := b.Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vertex 1: coordinate (40000,-5) out of range")
		assert.Contains(t, err.Error(), "node 0: partition out of range")
	})
	t.Run("dangling node child", func(t *testing.T) {
		b := NewBuilder()
		b.Sector("s", 0, 0)
		leaf := b.Subsector(0)
		b.Node(0, 0, 1, 0, leaf, NodeChild(3))
		_, err := b.Build()
		assert.ErrorContains(t, err, "missing node 3")
	})
}

func TestPolyBlocks(t *testing.T) {
	b := NewBuilder().Grid(0, 0, 4, 4)
	s := b.Sector("s", 0, 128)
	a := b.Vertex(100, 100)
	c := b.Vertex(300, 100)
	l := b.Line(a, c, s, -1, 0)
	b.Poly(3, l)
	lvl, err := b.Build()
	require.NoError(t, err)

	assert.Same(t, lvl.Polys[0], lvl.Lines[l].Poly)
	for x := 0; x < 4; x++ {
		assert.Empty(t, lvl.CellLines(x), "poly lines stay out of the static blockmap")
	}
	assert.Len(t, lvl.CellPolys(0), 1)
	assert.Len(t, lvl.CellPolys(2), 1)
	assert.Empty(t, lvl.CellPolys(3))
}

func TestBoxOnLineSide(t *testing.T) {
	lvl := squareRoom(t)
	diag := lvl.Lines[6]
	west := lvl.Lines[0]

	tests := []struct {
		name string
		box  geom.Box
		line *Line
		want int
	}{
		{"room side of diagonal", geom.BoxAround(fx(64), fx(64), fx(16)), diag, 0},
		{"nook side of diagonal", geom.BoxAround(fx(240), fx(240), fx(8)), diag, 1},
		{"straddles diagonal", geom.BoxAround(fx(192), fx(192), fx(16)), diag, -1},
		{"inside room of west wall", geom.BoxAround(fx(64), fx(64), fx(16)), west, 0},
		{"outside west wall", geom.BoxAround(fx(-64), fx(64), fx(16)), west, 1},
		{"straddles west wall", geom.BoxAround(fx(0), fx(64), fx(16)), west, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoxOnLineSide(tt.box, tt.line))
		})
	}
}

func TestPointInSectorWithoutNodes(t *testing.T) {
	lvl := squareRoom(t)
	assert.Equal(t, "room", lvl.PointInSector(fx(50), fx(50)).Name)
	assert.Equal(t, "nook", lvl.PointInSector(fx(240), fx(240)).Name)
	assert.Equal(t, "room", lvl.PointInSector(fx(-500), fx(-500)).Name, "outside falls back to sector 0")
	assert.Same(t, lvl.PointInSector(fx(50), fx(50)), lvl.PointInSectorLegacy(fx(50), fx(50)))
}

// splitLevel divides the plane at x=100 with one BSP node.
func splitLevel(t *testing.T) *Level {
	t.Helper()
	b := NewBuilder().Grid(0, 0, 2, 2)
	east := b.Sector("east", 0, 0)
	west := b.Sector("west", 0, 0)
	eastLeaf := b.Subsector(east)
	westLeaf := b.Subsector(west)
	// Partition heading north: the front (right) side is east.
	b.Node(100, 0, 0, 256, eastLeaf, westLeaf)
	lvl, err := b.Build()
	require.NoError(t, err)
	return lvl
}

func TestPointInSectorBSP(t *testing.T) {
	lvl := splitLevel(t)
	assert.Equal(t, "east", lvl.PointInSector(fx(150), fx(20)).Name)
	assert.Equal(t, "west", lvl.PointInSector(fx(50), fx(20)).Name)
	assert.Equal(t, "east", lvl.PointInSector(fx(100), fx(20)).Name, "on the partition counts as front")
}

func TestPointOnNodeSideLegacy(t *testing.T) {
	n := &Node{X: fx(100), Dy: fx(256)}
	assert.Equal(t, 0, PointOnNodeSideLegacy(fx(150), fx(20), n))
	assert.Equal(t, 1, PointOnNodeSideLegacy(fx(50), fx(20), n))
	// On a vertical partition the legacy test puts the point behind.
	assert.Equal(t, 1, PointOnNodeSideLegacy(fx(100), fx(20), n))
	assert.Equal(t, 0, PointOnNodeSide(fx(100), fx(20), n))

	diag := &Node{Dx: fx(64), Dy: fx(64)}
	assert.Equal(t, 0, PointOnNodeSideLegacy(fx(40), fx(10), diag))
	assert.Equal(t, 1, PointOnNodeSideLegacy(fx(10), fx(40), diag))
	assert.Equal(t, PointOnNodeSide(fx(40), fx(10), diag), PointOnNodeSideLegacy(fx(40), fx(10), diag))
}

func TestBuildWideMap(t *testing.T) {
	b := NewBuilder()
	s := b.Sector("strip", 0, 128)
	w := b.Vertex(-32000, 0)
	e := b.Vertex(32000, 0)
	b.Line(w, e, s, -1, LineBlocking)
	lvl, err := b.Build()
	require.NoError(t, err)

	bm := lvl.Blockmap
	assert.Equal(t, fx(-32008), bm.OrgX)
	assert.Equal(t, 501, bm.Width)
	assert.Equal(t, 1, bm.Height)
	assert.Equal(t, []int32{0}, lvl.CellLines(0))
	assert.Equal(t, []int32{0}, lvl.CellLines(500))

	cb := bm.cellBox(500, 0)
	assert.Equal(t, fx(31992), cb.Left)
	assert.Equal(t, fx(32120), cb.Right)

	// A cell beyond the map edge reaches past MaxUnits.
	cb = bm.cellBox(506, 0)
	assert.Equal(t, fx(32760), cb.Left)
	assert.Equal(t, geom.MaxFixed, cb.Right)
}
