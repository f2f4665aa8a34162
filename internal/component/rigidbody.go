package component

import "github.com/whale2d/sim2d/internal/core/vmath"

// RigidBody carries the integrator state. Mass 0 marks an immovable body:
// it ignores forces and gravity and never builds up velocity.
// Force accumulates impulses for the current tick only.
type RigidBody struct {
	Mass         float64
	Force        vmath.Vec
	Acceleration vmath.Vec
	Velocity     vmath.Vec
}

func NewRigidBody(mass float64) *RigidBody {
	return &RigidBody{Mass: mass}
}

func (r *RigidBody) Immovable() bool { return r.Mass == 0 }

// Impulse adds to the force consumed by the next integration step.
func (r *RigidBody) Impulse(pulse vmath.Vec) {
	r.Force = r.Force.Add(pulse)
}
