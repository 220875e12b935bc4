package spatial

import "github.com/blocklink/worldindex/internal/geom"

const (
	actorHashBuckets = 32
	actorHashFixed   = 10
	actorHashGrow    = 50
)

type actorHashEntry struct {
	actor *Actor
	next  int32
}

// BlockActorsIterator yields each actor linked into a rectangle of cells
// once, even when its box spans several of them.
type BlockActorsIterator struct {
	ix                     *Index
	minX, minY, maxX, maxY int
	curX, curY             int
	block                  NodeID
	done                   bool

	buckets  [actorHashBuckets]int32
	fixed    [actorHashFixed]actorHashEntry
	numFixed int32
	overflow []actorHashEntry
}

// NewActorsIterator walks cells minX..maxX × minY..maxY.
func (ix *Index) NewActorsIterator(minX, minY, maxX, maxY int) *BlockActorsIterator {
	it := &BlockActorsIterator{}
	it.init(ix, minX, minY, maxX, maxY)
	return it
}

// ActorsInBox iterates the actors of every cell a map box overlaps. Actors
// are not clipped to the box.
func (ix *Index) ActorsInBox(b geom.Box) *BlockActorsIterator {
	x1, y1, x2, y2, ok := ix.grid.BoxRange(b)
	if !ok {
		it := &BlockActorsIterator{ix: ix, done: true}
		it.clearHash()
		return it
	}
	return ix.NewActorsIterator(x1, y1, x2, y2)
}

func (it *BlockActorsIterator) init(ix *Index, minX, minY, maxX, maxY int) {
	it.ix = ix
	it.minX, it.minY, it.maxX, it.maxY = minX, minY, maxX, maxY
	it.clearHash()
	it.startBlock(minX, minY)
}

// Reset restarts the walk and forgets every actor already returned.
func (it *BlockActorsIterator) Reset() {
	it.clearHash()
	it.startBlock(it.minX, it.minY)
}

// SwitchBlock narrows the iterator to a single cell. Actors returned
// before the switch are still suppressed.
func (it *BlockActorsIterator) SwitchBlock(x, y int) {
	it.minX, it.maxX = x, x
	it.minY, it.maxY = y, y
	it.startBlock(x, y)
}

func (it *BlockActorsIterator) startBlock(x, y int) {
	it.curX, it.curY = x, y
	it.done = x > it.maxX || y > it.maxY
	it.block = NoNode
	if it.ix.grid.Contains(x, y) {
		it.block = it.ix.cells[it.ix.grid.Index(x, y)]
	}
}

func (it *BlockActorsIterator) clearHash() {
	for i := range it.buckets {
		it.buckets[i] = -1
	}
	it.numFixed = 0
	it.overflow = it.overflow[:0]
}

func (it *BlockActorsIterator) entry(i int32) *actorHashEntry {
	if i < actorHashFixed {
		return &it.fixed[i]
	}
	return &it.overflow[i-actorHashFixed]
}

// remember adds a to the dedup set and reports whether it was new.
func (it *BlockActorsIterator) remember(a *Actor) bool {
	h := a.serial % actorHashBuckets
	for i := it.buckets[h]; i >= 0; {
		e := it.entry(i)
		if e.actor == a {
			return false
		}
		i = e.next
	}

	var i int32
	if it.numFixed < actorHashFixed {
		i = it.numFixed
		it.numFixed++
		it.fixed[i] = actorHashEntry{actor: a, next: it.buckets[h]}
	} else {
		if len(it.overflow) == cap(it.overflow) {
			grown := make([]actorHashEntry, len(it.overflow), cap(it.overflow)+actorHashGrow)
			copy(grown, it.overflow)
			it.overflow = grown
		}
		i = int32(len(it.overflow)) + actorHashFixed
		it.overflow = append(it.overflow, actorHashEntry{actor: a, next: it.buckets[h]})
	}
	it.buckets[h] = i
	return true
}

// Next returns the next unseen actor, or nil when the range is exhausted.
func (it *BlockActorsIterator) Next() *Actor {
	pool := it.ix.pool
	for !it.done {
		for it.block != NoNode {
			n := pool.node(it.block)
			a := n.actor
			it.block = n.nextActor

			// An actor in a single cell cannot be seen twice.
			if n.prevBlock == NoNode && n.nextBlock == NoNode {
				return a
			}
			if it.remember(a) {
				return a
			}
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

// ActorsInCell calls fn for every actor listed in cell (x,y) until fn
// returns false. Invalid cells are empty.
func (ix *Index) ActorsInCell(x, y int, fn func(*Actor) bool) {
	if !ix.grid.Contains(x, y) {
		return
	}
	for id := ix.cells[ix.grid.Index(x, y)]; id != NoNode; {
		n := ix.pool.node(id)
		next := n.nextActor
		if !fn(n.actor) {
			return
		}
		id = next
	}
}
