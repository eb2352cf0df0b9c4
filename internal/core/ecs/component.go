package ecs

import "slices"

// PtrComponentStore maps handles to component pointers and keeps an ordered
// key list for deterministic iteration. The list is rebuilt lazily after
// inserts and removals.
type PtrComponentStore[T any] struct {
	data   map[EntityID]*T
	order  []EntityID
	sorted bool
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		data:   make(map[EntityID]*T, 64),
		sorted: true,
	}
}

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		s.order = append(s.order, id)
		s.sorted = false
	}
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	if _, ok := s.data[id]; !ok {
		return
	}
	delete(s.data, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int { return len(s.data) }

// Each visits entries in ascending handle order. fn must not add or remove
// entries.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.keys() {
		fn(id, s.data[id])
	}
}

// IDs returns a copy of every stored handle in ascending order.
func (s *PtrComponentStore[T]) IDs() []EntityID {
	return slices.Clone(s.keys())
}

func (s *PtrComponentStore[T]) keys() []EntityID {
	if !s.sorted {
		slices.Sort(s.order)
		s.sorted = true
	}
	return s.order
}
