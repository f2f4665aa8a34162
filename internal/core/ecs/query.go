package ecs

// Joins walk the smallest participating store in its (ascending index)
// order and probe the others, so every join yields entities in the same
// stable order regardless of which store drives it. Entities missing any
// requested component are skipped.

type prober interface {
	Len() int
	Has(id EntityID) bool
	IDs() []EntityID
}

func driver(stores ...prober) []EntityID {
	smallest := stores[0]
	for _, s := range stores[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	return smallest.IDs()
}

// Each2 iterates over entities that have both component A and B.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	for _, id := range driver(sa, sb) {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		fn(id, a, b)
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *Store[A], sb *Store[B], sc *Store[C], fn func(EntityID, *A, *B, *C)) {
	for _, id := range driver(sa, sb, sc) {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		c, ok := sc.data[id]
		if !ok {
			continue
		}
		fn(id, a, b, c)
	}
}

// Each4 iterates over entities that have components A, B, C and D.
func Each4[A, B, C, D any](sa *Store[A], sb *Store[B], sc *Store[C], sd *Store[D], fn func(EntityID, *A, *B, *C, *D)) {
	for _, id := range driver(sa, sb, sc, sd) {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		c, ok := sc.data[id]
		if !ok {
			continue
		}
		d, ok := sd.data[id]
		if !ok {
			continue
		}
		fn(id, a, b, c, d)
	}
}
