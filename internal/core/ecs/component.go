package ecs

import "sort"

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID) bool
}

// Store is a generic sparse-set component store. Components live behind
// pointers so systems mutate them in place; ids are kept sorted by entity
// index, which is the iteration order of Each and of every join.
type Store[T any] struct {
	data map[EntityID]*T
	ids  []EntityID
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 64),
		ids:  make([]EntityID, 0, 64),
	}
}

// Set attaches c to id, replacing any previous component.
func (s *Store[T]) Set(id EntityID, c *T) {
	if _, ok := s.data[id]; !ok {
		i := s.search(id)
		s.ids = append(s.ids, 0)
		copy(s.ids[i+1:], s.ids[i:])
		s.ids[i] = id
	}
	s.data[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

// Remove detaches id and reports whether it had a component here.
func (s *Store[T]) Remove(id EntityID) bool {
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	i := s.search(id)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	return true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.ids)
}

// IDs returns the entity ids in iteration order. The slice is shared; do not modify.
func (s *Store[T]) IDs() []EntityID {
	return s.ids
}

// Each visits every component in ascending entity index.
// fn must not add or remove components of this store.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.ids {
		fn(id, s.data[id])
	}
}

func (s *Store[T]) search(id EntityID) int {
	idx := id.Index()
	return sort.Search(len(s.ids), func(i int) bool { return s.ids[i].Index() >= idx })
}
