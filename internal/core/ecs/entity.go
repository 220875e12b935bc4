package ecs

// EntityID packs a slot index (low 32 bits) with a generation (high 32 bits).
// Slot 0 is never handed out, so the zero id means "none".
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool hands out generational ids and recycles destroyed slots
// oldest first.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: []uint32{0},
		freeList:    make([]uint32, 0, 64),
		nextIndex:   1,
	}
}

func (p *EntityPool) Live() int { return p.live }

func (p *EntityPool) Create() EntityID {
	p.live++
	if len(p.freeList) > 0 {
		idx := p.freeList[0]
		p.freeList = p.freeList[1:]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex || p.generations[idx] != id.Generation() {
		return // stale
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
}
