package level

import "github.com/blocklink/worldindex/internal/geom"

// Blockmap cells are BlockUnits map units square.
const (
	BlockUnits  = 128
	BlockToFrac = 7 // log2(BlockUnits)
	BlockShift  = geom.FracBits + BlockToFrac
	BlockSize   = geom.Fixed(BlockUnits << geom.FracBits)
)

type Vertex struct {
	X, Y geom.Fixed
}

type LineFlags uint32

const (
	LineBlocking LineFlags = 1 << iota
	LineBlockMonsters
	LineTwoSided
)

// Line is a map boundary line. Lines that belong to a polyobject are not in
// the static blockmap; they are reached through the polyobject cell links.
type Line struct {
	Index  int
	V1, V2 *Vertex
	Dx, Dy geom.Fixed
	BBox   geom.Box
	Front  *Sector
	Back   *Sector
	Flags  LineFlags
	Poly   *Poly
}

// Divline returns the line as a directed divline from V1 to V2.
func (l *Line) Divline() geom.Divline {
	return geom.Divline{X: l.V1.X, Y: l.V1.Y, Dx: l.Dx, Dy: l.Dy}
}

// Blocks reports whether the line stops sight and movement outright.
func (l *Line) Blocks() bool {
	return l.Back == nil || l.Flags&LineBlocking != 0
}

type Sector struct {
	Index    int
	Name     string
	FloorZ   geom.Fixed
	CeilingZ geom.Fixed

	lines []*Line // boundary lines, for point location without nodes
}

// Poly is a movable group of lines (a swinging or sliding door).
type Poly struct {
	Index int
	ID    int
	Lines []*Line
	BBox  geom.Box
}

// NodeChild addresses either a node (>= 0) or a subsector (^index, < 0).
type NodeChild int32

func (c NodeChild) IsSubsector() bool { return c < 0 }
func (c NodeChild) Subsector() int    { return int(^c) }

// Node is a BSP partition line; Children[0] is the front half-space.
type Node struct {
	X, Y     geom.Fixed
	Dx, Dy   geom.Fixed
	Children [2]NodeChild
}

type Subsector struct {
	Sector *Sector
}

// Blockmap is the compiled per-cell line index.
type Blockmap struct {
	OrgX, OrgY    geom.Fixed
	Width, Height int
	Cells         [][]int32
}

// Level is immutable once built; the spatial index keeps all mutable
// per-query state on its own side.
type Level struct {
	Vertices   []*Vertex
	Lines      []*Line
	Sectors    []*Sector
	Polys      []*Poly
	Nodes      []Node
	Subsectors []Subsector
	Blockmap   Blockmap
	PolyBlocks [][]*Poly
}

// CellLines returns the static line indices stored for a cell.
func (l *Level) CellLines(cell int) []int32 {
	return l.Blockmap.Cells[cell]
}

// CellPolys returns the polyobjects whose bounds touch a cell.
func (l *Level) CellPolys(cell int) []*Poly {
	if l.PolyBlocks == nil {
		return nil
	}
	return l.PolyBlocks[cell]
}
