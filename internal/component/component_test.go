package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

func TestTransformFacing(t *testing.T) {
	tr := NewTransform(vmath.V(1, 2))
	assert.Equal(t, vmath.V(1, 1), tr.Scale)
	assert.False(t, tr.FacingLeft())

	tr.Scale.X = 2
	tr.FaceLeft()
	assert.Equal(t, -2.0, tr.Scale.X)
	tr.FaceLeft()
	assert.Equal(t, -2.0, tr.Scale.X, "already facing left")
	tr.FaceRight()
	assert.Equal(t, 2.0, tr.Scale.X)
	tr.FaceRight()
	assert.Equal(t, 2.0, tr.Scale.X)

	tr.Translate(vmath.V(1, -1))
	assert.Equal(t, vmath.V(2, 1), tr.Position)

	var zero Transform
	zero.FaceLeft()
	assert.True(t, zero.FacingLeft())
}

func TestRigidBodyDefaults(t *testing.T) {
	var rb RigidBody
	assert.True(t, rb.Immovable())

	rb = *NewRigidBody(10)
	rb.Impulse(vmath.V(1, 0))
	rb.Impulse(vmath.V(0, 2))
	assert.Equal(t, vmath.V(1, 2), rb.Force)
}

func TestShapeDefaults(t *testing.T) {
	var c Collider
	assert.Equal(t, ShapeNone, c.Shape().Kind)
	assert.Equal(t, "circle(r=2)", NewCollider(Circle(2)).Shape().String())
	assert.Equal(t, ShapeRect, ParseShapeKind("box"))
	assert.Equal(t, ShapeNone, ParseShapeKind("polygon"))
}

func TestCollisionResult(t *testing.T) {
	var c CollisionResult
	_, ok := c.Last()
	assert.False(t, ok)

	c.Add(1, vmath.V(-1, 0))
	assert.False(t, c.HasHitBottom())
	c.Add(2, vmath.V(0, 0.5))
	assert.True(t, c.HasHitBottom())
	assert.True(t, c.Landed())
	assert.True(t, c.Has(2))

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, Contact{With: 2, MTV: vmath.V(0, 0.5)}, last)

	c.Reset()
	assert.True(t, c.Empty())
	assert.False(t, c.HasHitBottom())

	c.Add(2, vmath.V(0, 0.5))
	assert.False(t, c.Landed(), "was already resting last tick")
}

func TestCollisionLayer(t *testing.T) {
	var none *CollisionLayer
	assert.True(t, none.In(DefaultLayer))
	assert.True(t, none.Blocks(DefaultLayer))
	assert.False(t, none.In(1<<1))

	l := &CollisionLayer{Category: 1<<1 | 1<<2, Ignore: 1 << 2}
	assert.False(t, l.In(DefaultLayer))
	assert.True(t, l.In(1<<1))
	assert.True(t, l.Blocks(1<<1))
	assert.True(t, l.In(1<<2))
	assert.False(t, l.Blocks(1<<2))
}

func TestAnimationCycles(t *testing.T) {
	a := NewAnimation(2, 4, 5, 6)
	var frames []int
	for i := 0; i < 6; i++ {
		frames = append(frames, a.Frame())
		a.Update()
	}
	assert.Equal(t, []int{4, 4, 5, 5, 6, 6}, frames)
	assert.Equal(t, 4, a.Frame())
}

func TestSpriteSwitchesAndResets(t *testing.T) {
	s := NewSprite(8).
		Add("idle", NewAnimation(1, 0, 1)).
		Add("run", NewAnimation(1, 2, 3, 4))
	assert.Equal(t, "idle", s.Current())
	assert.Equal(t, []string{"idle", "run"}, s.Names())

	s.Update()
	f, ok := s.Frame()
	require.True(t, ok)
	assert.Equal(t, 1, f)

	s.SetAnimation("run")
	s.Update()
	s.SetAnimation("idle")
	f, _ = s.Frame()
	assert.Equal(t, 0, f, "switching restarts the animation")

	s.SetAnimation("missing")
	_, ok = s.Frame()
	assert.False(t, ok)
	s.Update()
}

func TestSpriteInvariantsPanic(t *testing.T) {
	assert.Panics(t, func() {
		NewSprite(2).Add("bad", NewAnimation(1, 0, 2))
	})
	assert.Panics(t, func() {
		NewAnimation(1).Update()
	})
}
