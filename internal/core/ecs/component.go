package ecs

import "slices"

// Removable is implemented by every component store so the World can drop
// an entity's data from all of them when it is destroyed.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed component map. Iteration is in ascending EntityID order
// so a seeded run replays identically.
type Store[T any] struct {
	data  map[EntityID]*T
	order []EntityID // sorted; rebuilt lazily after inserts and removes
	dirty bool
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 256),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.dirty = true
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; ok {
		delete(s.data, id)
		s.dirty = true
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// IDs returns the stored entity ids in ascending order. The slice is shared;
// callers must not keep it across Set or Remove.
func (s *Store[T]) IDs() []EntityID {
	if s.dirty {
		s.order = s.order[:0]
		for id := range s.data {
			s.order = append(s.order, id)
		}
		slices.Sort(s.order)
		s.dirty = false
	}
	return s.order
}

// Each visits every component in id order. fn may remove the entity it is
// visiting; other changes take effect on the next call.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	ids := slices.Clone(s.IDs())
	for _, id := range ids {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}
