package level

import (
	"errors"
	"fmt"

	"github.com/blocklink/worldindex/internal/geom"
)

// blockmapMargin keeps lines on the outer boundary off the grid edge.
const blockmapMargin = 8

// Builder assembles a Level from raw map records and compiles the blockmap.
type Builder struct {
	lvl     Level
	hasGrid bool
	grid    Blockmap
	errs    []error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Grid fixes the blockmap geometry instead of deriving it from the vertices.
func (b *Builder) Grid(orgX, orgY, width, height int) *Builder {
	if !geom.InRange(orgX) || !geom.InRange(orgY) {
		b.errs = append(b.errs, fmt.Errorf("blockmap origin (%d,%d) out of range", orgX, orgY))
	}
	b.hasGrid = true
	b.grid = Blockmap{
		OrgX:   geom.FromInt(orgX),
		OrgY:   geom.FromInt(orgY),
		Width:  width,
		Height: height,
	}
	return b
}

// Vertex adds a vertex in whole map units and returns its index.
// Coordinates must lie within geom.MinUnits..geom.MaxUnits.
func (b *Builder) Vertex(x, y int) int {
	if !geom.InRange(x) || !geom.InRange(y) {
		b.errs = append(b.errs, fmt.Errorf("vertex %d: coordinate (%d,%d) out of range", len(b.lvl.Vertices), x, y))
	}
	b.lvl.Vertices = append(b.lvl.Vertices, &Vertex{X: geom.FromInt(x), Y: geom.FromInt(y)})
	return len(b.lvl.Vertices) - 1
}

// Sector adds a sector and returns its index.
func (b *Builder) Sector(name string, floor, ceiling int) int {
	s := &Sector{
		Index:    len(b.lvl.Sectors),
		Name:     name,
		FloorZ:   geom.FromInt(floor),
		CeilingZ: geom.FromInt(ceiling),
	}
	b.lvl.Sectors = append(b.lvl.Sectors, s)
	return s.Index
}

// Line adds a line from v1 to v2. back is -1 for a one-sided line.
func (b *Builder) Line(v1, v2, front, back int, flags LineFlags) int {
	idx := len(b.lvl.Lines)
	if v1 < 0 || v1 >= len(b.lvl.Vertices) || v2 < 0 || v2 >= len(b.lvl.Vertices) {
		b.errs = append(b.errs, fmt.Errorf("line %d: vertex out of range", idx))
		return idx
	}
	if front < 0 || front >= len(b.lvl.Sectors) || back >= len(b.lvl.Sectors) {
		b.errs = append(b.errs, fmt.Errorf("line %d: sector out of range", idx))
		return idx
	}
	l := &Line{
		Index: idx,
		V1:    b.lvl.Vertices[v1],
		V2:    b.lvl.Vertices[v2],
		Front: b.lvl.Sectors[front],
		Flags: flags,
	}
	if back >= 0 {
		l.Back = b.lvl.Sectors[back]
		l.Flags |= LineTwoSided
	}
	b.lvl.Lines = append(b.lvl.Lines, l)
	return idx
}

// Poly groups existing lines into a polyobject.
func (b *Builder) Poly(id int, lines ...int) int {
	p := &Poly{Index: len(b.lvl.Polys), ID: id}
	for _, li := range lines {
		if li < 0 || li >= len(b.lvl.Lines) {
			b.errs = append(b.errs, fmt.Errorf("poly %d: line %d out of range", id, li))
			continue
		}
		p.Lines = append(p.Lines, b.lvl.Lines[li])
	}
	b.lvl.Polys = append(b.lvl.Polys, p)
	return p.Index
}

// Node adds a BSP partition. Children use NodeChild encoding.
func (b *Builder) Node(x, y, dx, dy int, front, back NodeChild) {
	if !geom.InRange(x) || !geom.InRange(y) || !geom.InRange(dx) || !geom.InRange(dy) {
		b.errs = append(b.errs, fmt.Errorf("node %d: partition out of range", len(b.lvl.Nodes)))
	}
	b.lvl.Nodes = append(b.lvl.Nodes, Node{
		X:        geom.FromInt(x),
		Y:        geom.FromInt(y),
		Dx:       geom.FromInt(dx),
		Dy:       geom.FromInt(dy),
		Children: [2]NodeChild{front, back},
	})
}

// Subsector adds a BSP leaf belonging to sector.
func (b *Builder) Subsector(sector int) NodeChild {
	if sector < 0 || sector >= len(b.lvl.Sectors) {
		b.errs = append(b.errs, fmt.Errorf("subsector %d: sector %d out of range", len(b.lvl.Subsectors), sector))
	} else {
		b.lvl.Subsectors = append(b.lvl.Subsectors, Subsector{Sector: b.lvl.Sectors[sector]})
	}
	return NodeChild(^int32(len(b.lvl.Subsectors) - 1))
}

// Build finalizes line geometry and compiles the blockmap and poly links.
func (b *Builder) Build() (*Level, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if len(b.lvl.Sectors) == 0 {
		return nil, errors.New("level has no sectors")
	}
	for _, n := range b.lvl.Nodes {
		for _, c := range n.Children {
			if c.IsSubsector() && c.Subsector() >= len(b.lvl.Subsectors) {
				return nil, fmt.Errorf("node child references missing subsector %d", c.Subsector())
			}
			if !c.IsSubsector() && int(c) >= len(b.lvl.Nodes) {
				return nil, fmt.Errorf("node child references missing node %d", c)
			}
		}
	}

	lvl := &b.lvl
	for _, l := range lvl.Lines {
		l.Dx = l.V2.X - l.V1.X
		l.Dy = l.V2.Y - l.V1.Y
		l.BBox = geom.EmptyBox()
		l.BBox.AddPoint(l.V1.X, l.V1.Y)
		l.BBox.AddPoint(l.V2.X, l.V2.Y)
		if l.Back != l.Front {
			l.Front.lines = append(l.Front.lines, l)
			if l.Back != nil {
				l.Back.lines = append(l.Back.lines, l)
			}
		}
	}
	for _, p := range lvl.Polys {
		p.BBox = geom.EmptyBox()
		for _, l := range p.Lines {
			l.Poly = p
			p.BBox.AddPoint(l.V1.X, l.V1.Y)
			p.BBox.AddPoint(l.V2.X, l.V2.Y)
		}
	}

	if b.hasGrid {
		lvl.Blockmap = b.grid
	} else {
		lvl.Blockmap = deriveGrid(lvl.Vertices)
	}
	if lvl.Blockmap.Width <= 0 || lvl.Blockmap.Height <= 0 {
		return nil, fmt.Errorf("invalid blockmap size %dx%d", lvl.Blockmap.Width, lvl.Blockmap.Height)
	}
	compileBlockmap(lvl)
	compilePolyBlocks(lvl)
	return lvl, nil
}

func deriveGrid(verts []*Vertex) Blockmap {
	if len(verts) == 0 {
		return Blockmap{Width: 1, Height: 1}
	}
	box := geom.EmptyBox()
	for _, v := range verts {
		box.AddPoint(v.X, v.Y)
	}
	margin := int64(geom.FromInt(blockmapMargin))
	orgX := geom.Saturate(int64(box.Left) - margin)
	orgY := geom.Saturate(int64(box.Bottom) - margin)
	return Blockmap{
		OrgX:   orgX,
		OrgY:   orgY,
		Width:  int((int64(box.Right)-int64(orgX))>>BlockShift) + 1,
		Height: int((int64(box.Top)-int64(orgY))>>BlockShift) + 1,
	}
}

// cellRange returns the clamped inclusive cell range covering box, and
// false when the box misses the grid entirely.
func (bm *Blockmap) cellRange(box geom.Box) (x1, y1, x2, y2 int, ok bool) {
	x1 = int((int64(box.Left) - int64(bm.OrgX)) >> BlockShift)
	x2 = int((int64(box.Right) - int64(bm.OrgX)) >> BlockShift)
	y1 = int((int64(box.Bottom) - int64(bm.OrgY)) >> BlockShift)
	y2 = int((int64(box.Top) - int64(bm.OrgY)) >> BlockShift)
	if x1 >= bm.Width || x2 < 0 || y1 >= bm.Height || y2 < 0 {
		return 0, 0, 0, 0, false
	}
	return max(x1, 0), max(y1, 0), min(x2, bm.Width-1), min(y2, bm.Height-1), true
}

// cellBox returns the map-space box of cell (x,y), saturated where a cell
// of a wide map reaches past the Fixed range.
func (bm *Blockmap) cellBox(x, y int) geom.Box {
	left := int64(bm.OrgX) + int64(x)*int64(BlockSize)
	bottom := int64(bm.OrgY) + int64(y)*int64(BlockSize)
	return geom.Box{
		Left:   geom.Saturate(left),
		Right:  geom.Saturate(left + int64(BlockSize)),
		Bottom: geom.Saturate(bottom),
		Top:    geom.Saturate(bottom + int64(BlockSize)),
	}
}

// compileBlockmap stores each static line in every cell of its bounding
// range that the line passes through. The result may include a cell the
// infinite line clips just past a segment end; iterators re-test geometry.
func compileBlockmap(lvl *Level) {
	bm := &lvl.Blockmap
	bm.Cells = make([][]int32, bm.Width*bm.Height)
	for _, l := range lvl.Lines {
		if l.Poly != nil {
			continue
		}
		x1, y1, x2, y2, ok := bm.cellRange(l.BBox)
		if !ok {
			continue
		}
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				if x1 != x2 && y1 != y2 && BoxOnLineSide(bm.cellBox(x, y), l) != -1 {
					continue
				}
				cell := y*bm.Width + x
				bm.Cells[cell] = append(bm.Cells[cell], int32(l.Index))
			}
		}
	}
}

func compilePolyBlocks(lvl *Level) {
	if len(lvl.Polys) == 0 {
		return
	}
	bm := &lvl.Blockmap
	lvl.PolyBlocks = make([][]*Poly, bm.Width*bm.Height)
	for _, p := range lvl.Polys {
		if len(p.Lines) == 0 {
			continue
		}
		x1, y1, x2, y2, ok := bm.cellRange(p.BBox)
		if !ok {
			continue
		}
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				cell := y*bm.Width + x
				lvl.PolyBlocks[cell] = append(lvl.PolyBlocks[cell], p)
			}
		}
	}
}
