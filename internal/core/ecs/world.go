package ecs

// World owns the entity pool, the registered component stores and a
// deferred destruction queue flushed at the end of each tick.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 8),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

// Register adds a store that FlushDestroyQueue clears entities from.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking the
// same entity twice is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys queued entities and returns the ones that were
// still alive, after their components are gone.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	var gone []EntityID
	for _, id := range w.destroyQueue {
		if !w.pool.Alive(id) {
			continue
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
		gone = append(gone, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return gone
}
