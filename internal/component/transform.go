package component

import "github.com/whale2d/sim2d/internal/core/vmath"

// Transform places an entity in world space. Rotation is carried for
// renderers only. The sign of Scale.X encodes facing: negative is left.
type Transform struct {
	Position vmath.Vec
	Rotation float64
	Scale    vmath.Vec
}

// NewTransform returns a transform at pos with unit scale.
func NewTransform(pos vmath.Vec) *Transform {
	return &Transform{Position: pos, Scale: vmath.V(1, 1)}
}

func (t *Transform) Translate(d vmath.Vec) {
	t.Position = t.Position.Add(d)
}

func (t *Transform) FacingLeft() bool { return t.Scale.X < 0 }

// FaceLeft flips Scale.X negative; a no-op when already facing left.
func (t *Transform) FaceLeft() {
	if t.Scale.X > 0 {
		t.Scale.X = -t.Scale.X
	} else if t.Scale.X == 0 {
		t.Scale.X = -1
	}
}

// FaceRight flips Scale.X positive; a no-op when already facing right.
func (t *Transform) FaceRight() {
	if t.Scale.X < 0 {
		t.Scale.X = -t.Scale.X
	} else if t.Scale.X == 0 {
		t.Scale.X = 1
	}
}
