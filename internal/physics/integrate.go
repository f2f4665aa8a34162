package physics

import (
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

// Integrate advances one body by one tick (semi-implicit Euler):
// acceleration is rebuilt from this tick's force plus gravity, the force is
// consumed, then velocity and position follow. Immovable bodies have their
// acceleration and velocity pinned to zero.
func Integrate(t *component.Transform, rb *component.RigidBody, gravity vmath.Vec) {
	if rb.Immovable() {
		rb.Force = vmath.Vec{}
		rb.Acceleration = vmath.Vec{}
		rb.Velocity = vmath.Vec{}
		return
	}
	rb.Acceleration = rb.Force.Div(rb.Mass).Add(gravity)
	rb.Force = vmath.Vec{}
	rb.Velocity = rb.Velocity.Add(rb.Acceleration)
	t.Translate(rb.Velocity)
}

// ApplyCorrection moves a body by mtv and cancels its motion along every
// axis the correction acts on.
func ApplyCorrection(t *component.Transform, rb *component.RigidBody, mtv vmath.Vec) {
	if mtv.X != 0 {
		t.Position.X += mtv.X
		rb.Acceleration.X = 0
		rb.Velocity.X = 0
	}
	if mtv.Y != 0 {
		t.Position.Y += mtv.Y
		rb.Acceleration.Y = 0
		rb.Velocity.Y = 0
	}
}
