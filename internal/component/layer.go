package component

// Layer masks. Entities without a CollisionLayer belong to DefaultLayer.
const (
	DefaultLayer uint32 = 1 << 0
	AllLayers    uint32 = ^uint32(0)
)

// CollisionLayer assigns an entity to detection layers.
//
// Category is the set of layers the entity takes part in (zero means
// DefaultLayer). Ignore lists layers where the entity is still tested and
// pushed itself but never acts as an obstacle for others.
type CollisionLayer struct {
	Category uint32
	Ignore   uint32
}

func (l *CollisionLayer) category() uint32 {
	if l == nil || l.Category == 0 {
		return DefaultLayer
	}
	return l.Category
}

// In reports whether the entity takes part in any layer of mask.
// A nil layer behaves like the default.
func (l *CollisionLayer) In(mask uint32) bool {
	return l.category()&mask != 0
}

// Blocks reports whether the entity is an obstacle for others in mask.
func (l *CollisionLayer) Blocks(mask uint32) bool {
	if !l.In(mask) {
		return false
	}
	return l == nil || l.Ignore&mask == 0
}
