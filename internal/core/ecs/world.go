package ecs

import (
	"cmp"
	"slices"
)

// World owns the entity pool, the component registry and the queue of
// entities waiting to be destroyed at the end of the tick.
type World struct {
	pool     *EntityPool
	registry *Registry
	queue    []EntityID
	flushed  []EntityID
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
		queue:    make([]EntityID, 0, 16),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues id for the next flush. Queuing the same entity
// twice, or a stale id, is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	w.queue = append(w.queue, id)
}

// Pending reports how many marks wait for the next flush, duplicates included.
func (w *World) Pending() int { return len(w.queue) }

// FlushDestroyQueue destroys every queued entity that is still alive, in
// ascending index order, and returns the ids it destroyed. The returned
// slice is reused by the next flush.
func (w *World) FlushDestroyQueue() []EntityID {
	w.flushed = w.flushed[:0]
	if len(w.queue) == 0 {
		return w.flushed
	}
	slices.SortFunc(w.queue, func(a, b EntityID) int {
		if c := cmp.Compare(a.Index(), b.Index()); c != 0 {
			return c
		}
		return cmp.Compare(a.Generation(), b.Generation())
	})
	for _, id := range slices.Compact(w.queue) {
		if !w.pool.Alive(id) {
			continue
		}
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		w.flushed = append(w.flushed, id)
	}
	w.queue = w.queue[:0]
	return w.flushed
}
