package spatial

import (
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// Grid is the blockmap geometry: origin and size in cells. Fixed at level
// load.
type Grid struct {
	OrgX, OrgY    geom.Fixed
	Width, Height int
}

func gridOf(bm *level.Blockmap) Grid {
	return Grid{OrgX: bm.OrgX, OrgY: bm.OrgY, Width: bm.Width, Height: bm.Height}
}

// OffX is x relative to the grid origin. It is 64-bit: on a map wider
// than MaxUnits the far edge does not fit a Fixed.
func (g *Grid) OffX(x geom.Fixed) int64 { return int64(x) - int64(g.OrgX) }
func (g *Grid) OffY(y geom.Fixed) int64 { return int64(y) - int64(g.OrgY) }

// BlockX returns the raw cell column holding map x, rounding toward
// negative infinity. The result may lie outside the grid.
func (g *Grid) BlockX(x geom.Fixed) int { return int(g.OffX(x) >> level.BlockShift) }

// BlockY is BlockX for rows.
func (g *Grid) BlockY(y geom.Fixed) int { return int(g.OffY(y) >> level.BlockShift) }

func (g *Grid) ClampX(x int) int { return clamp(x, 0, g.Width-1) }
func (g *Grid) ClampY(y int) int { return clamp(y, 0, g.Height-1) }

// SafeCell returns the cell holding map point (x,y), clamped to the grid.
// Points far outside the map land on the nearest edge cell.
func (g *Grid) SafeCell(x, y geom.Fixed) (cx, cy int) {
	return g.ClampX(g.BlockX(x)), g.ClampY(g.BlockY(y))
}

func (g *Grid) Contains(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < g.Width && cy < g.Height
}

func (g *Grid) Index(cx, cy int) int {
	return cy*g.Width + cx
}

// BoxRange returns the inclusive cell range a map box covers, clipped to
// the grid. ok is false when the box lies entirely off the grid.
func (g *Grid) BoxRange(b geom.Box) (x1, y1, x2, y2 int, ok bool) {
	x1 = g.BlockX(b.Left)
	x2 = g.BlockX(b.Right)
	y1 = g.BlockY(b.Bottom)
	y2 = g.BlockY(b.Top)
	if x1 >= g.Width || x2 < 0 || y1 >= g.Height || y2 < 0 {
		return 0, 0, 0, 0, false
	}
	return g.ClampX(x1), g.ClampY(y1), g.ClampX(x2), g.ClampY(y2), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
