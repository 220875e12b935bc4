package spatial

// NodeID addresses a block node in the pool arena. Slot 0 is reserved so
// the zero value means "no node".
type NodeID int32

const NoNode NodeID = 0

// blockNode records that one actor occupies one cell. It sits in two
// intrusive lists at once: the cell's actor list (prevActor/nextActor) and
// the actor's own chain of cells (prevBlock/nextBlock). A prevActor or
// prevBlock of NoNode marks the head of the respective list.
type blockNode struct {
	actor     *Actor
	cell      int32
	prevActor NodeID
	nextActor NodeID
	prevBlock NodeID
	nextBlock NodeID
}

// BlockNodePool recycles block nodes through a free list threaded over
// nextBlock. Actors re-link every tick they move, so nodes are never
// returned to the allocator.
type BlockNodePool struct {
	nodes     []blockNode
	free      NodeID
	freeCount int
	width     int
}

// NewBlockNodePool creates a pool for a grid width cells wide.
func NewBlockNodePool(width int) *BlockNodePool {
	return &BlockNodePool{
		nodes: make([]blockNode, 1, 256),
		width: width,
	}
}

// Acquire returns a node for actor a in cell (x,y) with all links cleared.
func (p *BlockNodePool) Acquire(a *Actor, x, y int) NodeID {
	var id NodeID
	if p.free != NoNode {
		id = p.free
		p.free = p.nodes[id].nextBlock
		p.freeCount--
	} else {
		p.nodes = append(p.nodes, blockNode{})
		id = NodeID(len(p.nodes) - 1)
	}
	p.nodes[id] = blockNode{actor: a, cell: int32(x + y*p.width)}
	return id
}

// Release pushes a node onto the free list. Its list links are left stale;
// Acquire rewrites them.
func (p *BlockNodePool) Release(id NodeID) {
	n := &p.nodes[id]
	n.actor = nil
	n.nextBlock = p.free
	p.free = id
	p.freeCount++
}

// FreeCount is the number of nodes waiting on the free list.
func (p *BlockNodePool) FreeCount() int { return p.freeCount }

// Live is the number of nodes currently handed out.
func (p *BlockNodePool) Live() int { return len(p.nodes) - 1 - p.freeCount }

// Actor returns the owner of a live node.
func (p *BlockNodePool) Actor(id NodeID) *Actor { return p.nodes[id].actor }

// Cell returns the flat cell index of a live node.
func (p *BlockNodePool) Cell(id NodeID) int { return int(p.nodes[id].cell) }

func (p *BlockNodePool) node(id NodeID) *blockNode { return &p.nodes[id] }
