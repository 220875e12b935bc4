package spatial

import (
	"math"

	"go.uber.org/zap"

	"github.com/blocklink/worldindex/internal/geom"
	"github.com/blocklink/worldindex/internal/level"
)

// Link registers the actor at its current position: locates its sector,
// joins the sector's actor list and touch lists, and occupies every grid
// cell its box overlaps. An actor whose box lies fully off the grid is
// sector-linked but has no cells.
func (ix *Index) Link(a *Actor) {
	ix.linkInto(a, ix.lvl.PointInSector(a.X, a.Y))
}

// LinkForMapThing links an actor spawned from map data. With legacy map
// things enabled the sector is located with the legacy side test, and an
// actor flagged FixMapThingPos that straddles a wall is pushed back out
// first.
func (ix *Index) LinkForMapThing(a *Actor) {
	if !ix.opts.LegacyMapThings {
		ix.Link(a)
		return
	}
	sec := ix.lvl.PointInSectorLegacy(a.X, a.Y)
	if a.Flags&FixMapThingPos != 0 {
		if ix.nudgeOffWalls(a, sec) {
			sec = ix.lvl.PointInSector(a.X, a.Y)
		}
	}
	ix.linkInto(a, sec)
}

func (ix *Index) linkInto(a *Actor, sec *level.Sector) {
	if a.state == Linked {
		ix.log.Warn("actor linked twice, relinking",
			zap.Uint32("serial", a.serial),
			zap.Uint64("id", a.ID),
		)
		ix.Unlink(a)
	}
	if a.serial == 0 {
		ix.nextSerial++
		a.serial = ix.nextSerial
	}

	a.sector = sec
	a.linkedFlags = a.Flags & (NoSector | NoBlockmap)
	a.state = Linked
	ix.linked++

	if a.linkedFlags&NoSector == 0 {
		head := ix.sectorActors[sec.Index]
		a.sprev = nil
		a.snext = head
		if head != nil {
			head.sprev = a
		}
		ix.sectorActors[sec.Index] = a
		ix.touchSectors(a)
	} else {
		ix.dropTouchList(a)
	}

	if a.linkedFlags&NoBlockmap == 0 {
		ix.linkBlocks(a)
	}
}

func (ix *Index) linkBlocks(a *Actor) {
	g := &ix.grid
	x1, y1, x2, y2, ok := g.BoxRange(a.Box())
	if !ok {
		a.blocks = NoNode
		return
	}

	tail := NoNode
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			id := ix.pool.Acquire(a, x, y)
			n := ix.pool.node(id)

			head := ix.cells[n.cell]
			n.nextActor = head
			if head != NoNode {
				ix.pool.node(head).prevActor = id
			}
			ix.cells[n.cell] = id

			n.prevBlock = tail
			if tail == NoNode {
				a.blocks = id
			} else {
				ix.pool.node(tail).nextBlock = id
			}
			tail = id
		}
	}
}

// Unlink removes the actor from every structure it was linked into. The
// sector touch list survives so the next Link can reuse its nodes.
// Unlinking an actor that is not linked is logged and ignored.
func (ix *Index) Unlink(a *Actor) {
	if a.state != Linked {
		ix.log.Warn("actor unlinked while not linked",
			zap.Uint32("serial", a.serial),
			zap.Uint64("id", a.ID),
			zap.Stringer("state", a.state),
		)
		return
	}

	if a.linkedFlags&NoSector == 0 {
		if a.sprev != nil {
			a.sprev.snext = a.snext
		} else {
			ix.sectorActors[a.sector.Index] = a.snext
		}
		if a.snext != nil {
			a.snext.sprev = a.sprev
		}
		a.snext, a.sprev = nil, nil
	}

	if a.linkedFlags&NoBlockmap == 0 {
		for id := a.blocks; id != NoNode; {
			n := ix.pool.node(id)
			if n.nextActor != NoNode {
				ix.pool.node(n.nextActor).prevActor = n.prevActor
			}
			if n.prevActor != NoNode {
				ix.pool.node(n.prevActor).nextActor = n.nextActor
			} else {
				ix.cells[n.cell] = n.nextActor
			}
			next := n.nextBlock
			ix.pool.Release(id)
			id = next
		}
		a.blocks = NoNode
	}

	a.state = Detached
	ix.linked--
}

// SetOrigin moves a linked actor and relinks it at the new position.
func (ix *Index) SetOrigin(a *Actor, x, y, z geom.Fixed) {
	ix.Unlink(a)
	a.X, a.Y, a.Z = x, y, z
	ix.Link(a)
}

// Release unlinks a linked actor and frees its sector touch list. Call it
// when the owning object is destroyed.
func (ix *Index) Release(a *Actor) {
	if a.state == Linked {
		ix.Unlink(a)
	}
	ix.dropTouchList(a)
}

// nudgeOffWalls pushes the actor out of any wall line in its cell that it
// overlaps, away from the line toward sec. It reports whether the actor
// moved.
func (ix *Index) nudgeOffWalls(a *Actor, sec *level.Sector) bool {
	g := &ix.grid
	cx, cy := g.BlockX(a.X), g.BlockY(a.Y)
	if !g.Contains(cx, cy) {
		return false
	}
	r := a.Radius
	for _, li := range ix.lvl.CellLines(g.Index(cx, cy)) {
		ld := ix.lvl.Lines[li]
		if ld.Front == ld.Back {
			continue
		}
		if ld.Back != nil && ld.Front.FloorZ == ld.Back.FloorZ && ld.Front.CeilingZ == ld.Back.CeilingZ {
			continue
		}
		if a.X+r <= ld.BBox.Left || a.X-r >= ld.BBox.Right ||
			a.Y+r <= ld.BBox.Bottom || a.Y-r >= ld.BBox.Top {
			continue
		}

		fdx, fdy := ld.Dx.Float(), ld.Dy.Float()
		length := geom.FromFloat(math.Hypot(fdx, fdy))
		if length == 0 {
			continue
		}
		dll := ld.Divline()
		dlv := geom.Divline{
			X:  a.X,
			Y:  a.Y,
			Dx: geom.Div(dll.Dy, length),
			Dy: -geom.Div(dll.Dx, length),
		}
		distance := geom.InterceptVector(&dlv, &dll).Abs()
		if distance >= r {
			continue
		}

		angle := math.Atan2(fdy, fdx)
		if ld.Back != nil && ld.Back == sec {
			angle += math.Pi / 2
		} else {
			angle -= math.Pi / 2
		}
		push := (r - distance).Float()
		a.X += geom.FromFloat(push * math.Cos(angle))
		a.Y += geom.FromFloat(push * math.Sin(angle))
		ix.log.Debug("map thing pushed off wall",
			zap.Uint64("id", a.ID),
			zap.Int("line", ld.Index),
			zap.Float64("push", push),
		)
		return true
	}
	return false
}
