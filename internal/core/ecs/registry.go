package ecs

// Registry knows every component store so a destroyed entity can be
// dropped from all of them at once.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 8)}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// Stores returns the number of registered stores.
func (r *Registry) Stores() int { return len(r.stores) }

// RemoveAll detaches id from every store and reports how many components
// it had.
func (r *Registry) RemoveAll(id EntityID) int {
	n := 0
	for _, s := range r.stores {
		if s.Remove(id) {
			n++
		}
	}
	return n
}

// Register creates a store for T and adds it to r.
func Register[T any](r *Registry) *Store[T] {
	s := NewStore[T]()
	r.Register(s)
	return s
}
