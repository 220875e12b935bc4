package spatial

import "github.com/blocklink/worldindex/internal/level"

// secNodeID addresses a sector touch node. Slot 0 is reserved.
type secNodeID int32

const noSecNode secNodeID = 0

// secNode records that an actor's box overlaps a sector. Like block nodes
// it is threaded through two lists: the actor's touched sectors
// (tprev/tnext) and the sector's touching actors (sprev/snext).
type secNode struct {
	sector  int32
	actor   *Actor
	visited bool

	tprev, tnext secNodeID
	sprev, snext secNodeID
}

type secNodePool struct {
	nodes     []secNode
	free      secNodeID
	freeCount int
}

func newSecNodePool() secNodePool {
	return secNodePool{nodes: make([]secNode, 1, 64)}
}

func (p *secNodePool) acquire() secNodeID {
	if p.free != noSecNode {
		id := p.free
		p.free = p.nodes[id].tnext
		p.freeCount--
		return id
	}
	p.nodes = append(p.nodes, secNode{})
	return secNodeID(len(p.nodes) - 1)
}

func (p *secNodePool) release(id secNodeID) {
	p.nodes[id] = secNode{tnext: p.free}
	p.free = id
	p.freeCount++
}

func (p *secNodePool) live() int { return len(p.nodes) - 1 - p.freeCount }

func (p *secNodePool) node(id secNodeID) *secNode { return &p.nodes[id] }

// touchSectors reconciles the actor's touch list with its current box.
// Nodes kept from the previous link are reused when their sector is still
// touched and freed otherwise.
func (ix *Index) touchSectors(a *Actor) {
	for id := a.touching; id != noSecNode; id = ix.touch.node(id).tnext {
		ix.touch.node(id).visited = false
	}

	box := a.Box()
	x1, y1, x2, y2, ok := ix.grid.BoxRange(box)
	var it BlockLinesIterator
	it.init(ix, &ix.touchStamps, x1, y1, x2, y2, false)
	if !ok {
		it.done = true
	}
	for ld := it.Next(); ld != nil; ld = it.Next() {
		if !box.Overlaps(ld.BBox) || level.BoxOnLineSide(box, ld) != -1 {
			continue
		}
		ix.addSecNode(a, ld.Front)
		if ld.Back != nil {
			ix.addSecNode(a, ld.Back)
		}
	}
	ix.addSecNode(a, a.sector)

	for id := a.touching; id != noSecNode; {
		n := ix.touch.node(id)
		next := n.tnext
		if !n.visited {
			ix.delSecNode(id)
		}
		id = next
	}
}

func (ix *Index) addSecNode(a *Actor, s *level.Sector) {
	for id := a.touching; id != noSecNode; id = ix.touch.node(id).tnext {
		n := ix.touch.node(id)
		if int(n.sector) == s.Index {
			n.visited = true
			return
		}
	}

	id := ix.touch.acquire()
	n := ix.touch.node(id)
	*n = secNode{sector: int32(s.Index), actor: a, visited: true}

	n.tnext = a.touching
	if a.touching != noSecNode {
		ix.touch.node(a.touching).tprev = id
	}
	a.touching = id

	n.snext = ix.sectorTouch[s.Index]
	if n.snext != noSecNode {
		ix.touch.node(n.snext).sprev = id
	}
	ix.sectorTouch[s.Index] = id
}

func (ix *Index) delSecNode(id secNodeID) {
	n := ix.touch.node(id)
	a := n.actor

	if n.tprev != noSecNode {
		ix.touch.node(n.tprev).tnext = n.tnext
	} else {
		a.touching = n.tnext
	}
	if n.tnext != noSecNode {
		ix.touch.node(n.tnext).tprev = n.tprev
	}

	if n.sprev != noSecNode {
		ix.touch.node(n.sprev).snext = n.snext
	} else {
		ix.sectorTouch[n.sector] = n.snext
	}
	if n.snext != noSecNode {
		ix.touch.node(n.snext).sprev = n.sprev
	}

	ix.touch.release(id)
}

// dropTouchList frees every touch node an actor holds.
func (ix *Index) dropTouchList(a *Actor) {
	for a.touching != noSecNode {
		ix.delSecNode(a.touching)
	}
}
