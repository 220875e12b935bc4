package spatial

// CellCheck inspects one cell (flat index) for a search origin and returns
// the actor it settles on, or nil to keep searching.
type CellCheck func(origin *Actor, cell int) *Actor

// BlockmapSearch looks for an actor near origin by checking its cell and
// then square rings of cells around it, out to distance rings. Each ring is
// walked as four runs that share their corner cells, and rings are clamped
// to the grid, so a cell may be checked more than once. The first non-nil
// result of check wins.
func (ix *Index) BlockmapSearch(origin *Actor, distance int, check CellCheck) *Actor {
	g := &ix.grid
	w := g.Width
	startX := g.BlockX(origin.X)
	startY := g.BlockY(origin.Y)

	if g.Contains(startX, startY) {
		if t := check(origin, g.Index(startX, startY)); t != nil {
			return t
		}
	}

	for count := 1; count <= distance; count++ {
		blockX := g.ClampX(startX - count)
		blockY := g.ClampY(startY - count)
		blockIndex := blockY*w + blockX

		firstStop := startX + count
		if firstStop < 0 {
			continue
		}
		if firstStop >= w {
			firstStop = w - 1
		}
		secondStop := startY + count
		if secondStop < 0 {
			continue
		}
		if secondStop >= g.Height {
			secondStop = g.Height - 1
		}
		thirdStop := secondStop*w + blockX
		secondStop = secondStop*w + firstStop
		firstStop += blockY * w
		finalStop := blockIndex

		// Bottom row, left to right.
		for ; blockIndex <= firstStop; blockIndex++ {
			if t := check(origin, blockIndex); t != nil {
				return t
			}
		}
		// Right column, upward.
		for blockIndex--; blockIndex <= secondStop; blockIndex += w {
			if t := check(origin, blockIndex); t != nil {
				return t
			}
		}
		// Top row, right to left.
		for blockIndex -= w; blockIndex >= thirdStop; blockIndex-- {
			if t := check(origin, blockIndex); t != nil {
				return t
			}
		}
		// Left column, downward.
		for blockIndex++; blockIndex > finalStop; blockIndex -= w {
			if t := check(origin, blockIndex); t != nil {
				return t
			}
		}
	}
	return nil
}

// RoughMonsterSearch finds the first actor within distance rings of origin
// that okay accepts. origin itself is never offered.
func (ix *Index) RoughMonsterSearch(origin *Actor, distance int, okay func(origin, target *Actor) bool) *Actor {
	return ix.BlockmapSearch(origin, distance, func(origin *Actor, cell int) *Actor {
		for id := ix.cells[cell]; id != NoNode; id = ix.pool.node(id).nextActor {
			a := ix.pool.Actor(id)
			if a != origin && okay(origin, a) {
				return a
			}
		}
		return nil
	})
}
