package spatial

import (
	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// BlockLinesIterator yields each line in a rectangle of cells once.
// Polyobject lines of a cell come before its static lines. Dedup uses the
// index line generation, so two line iterators must not be interleaved
// unless the second keeps the generation of the first. Linking and
// tracing keep their own generations.
type BlockLinesIterator struct {
	ix                     *Index
	stamps                 *lineStamps
	minX, minY, maxX, maxY int
	curX, curY             int
	done                   bool

	list    []int32
	listPos int

	polys    []*level.Poly
	polyPos  int
	polyLine int
}

// NewLinesIterator walks cells minX..maxX × minY..maxY. Unless
// keepGeneration is set it starts a fresh dedup pass.
func (ix *Index) NewLinesIterator(minX, minY, maxX, maxY int, keepGeneration bool) *BlockLinesIterator {
	it := &BlockLinesIterator{}
	it.init(ix, &ix.lineStamps, minX, minY, maxX, maxY, keepGeneration)
	return it
}

// LinesInBox iterates the lines stored in every cell a map box overlaps.
// Lines are not clipped to the box.
func (ix *Index) LinesInBox(b geom.Box) *BlockLinesIterator {
	x1, y1, x2, y2, ok := ix.grid.BoxRange(b)
	if !ok {
		ix.lineStamps.next()
		return &BlockLinesIterator{ix: ix, stamps: &ix.lineStamps, done: true}
	}
	return ix.NewLinesIterator(x1, y1, x2, y2, false)
}

func (it *BlockLinesIterator) init(ix *Index, stamps *lineStamps, minX, minY, maxX, maxY int, keepGeneration bool) {
	*it = BlockLinesIterator{ix: ix, stamps: stamps, minX: minX, minY: minY, maxX: maxX, maxY: maxY}
	if !keepGeneration {
		stamps.next()
	}
	it.startBlock(minX, minY)
}

// Reset restarts the walk at the first cell without a new generation, so
// lines already returned stay suppressed.
func (it *BlockLinesIterator) Reset() {
	it.done = false
	it.startBlock(it.minX, it.minY)
}

func (it *BlockLinesIterator) startBlock(x, y int) {
	it.curX, it.curY = x, y
	it.list, it.listPos = nil, 0
	it.polys, it.polyPos, it.polyLine = nil, 0, 0
	if it.ix.grid.Contains(x, y) {
		cell := it.ix.grid.Index(x, y)
		it.list = it.ix.lvl.CellLines(cell)
		it.polys = it.ix.lvl.CellPolys(cell)
	}
	if x > it.maxX || y > it.maxY {
		it.done = true
	}
}

// Next returns the next unseen line, or nil when the range is exhausted.
func (it *BlockLinesIterator) Next() *level.Line {
	ix, st := it.ix, it.stamps
	for !it.done {
		for it.polyPos < len(it.polys) {
			p := it.polys[it.polyPos]
			if it.polyLine == 0 {
				if len(p.Lines) == 0 || !st.markPoly(p) {
					it.polyPos++
					continue
				}
			}
			ld := p.Lines[it.polyLine]
			it.polyLine++
			if it.polyLine >= len(p.Lines) {
				it.polyPos++
				it.polyLine = 0
			}
			if !st.markLine(ld) {
				continue
			}
			return ld
		}

		for it.listPos < len(it.list) {
			ld := ix.lvl.Lines[it.list[it.listPos]]
			it.listPos++
			if !st.markLine(ld) {
				continue
			}
			return ld
		}

		x, y := it.curX+1, it.curY
		if x > it.maxX {
			x = it.minX
			y++
		}
		it.startBlock(x, y)
	}
	return nil
}
