package component

// Collider attaches a shape to an entity; the shape is centred on the
// entity's Transform position. Immutable once built.
type Collider struct {
	shape Shape
}

func NewCollider(s Shape) *Collider {
	return &Collider{shape: s}
}

func (c *Collider) Shape() Shape { return c.shape }
