package component

import (
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

// Contact records one overlapping partner and the vector that separates
// this entity from it.
type Contact struct {
	With ecs.EntityID
	MTV  vmath.Vec
}

// CollisionResult is rebuilt by the detector every tick. Only entities that
// carry one receive collision responses; static geometry usually does not.
type CollisionResult struct {
	Contacts  []Contact
	HitBottom bool

	wasGrounded bool
}

// Reset clears the contacts for a new detection pass, remembering whether
// the entity was resting so Landed can detect the rising edge.
func (c *CollisionResult) Reset() {
	c.wasGrounded = c.HitBottom
	c.Contacts = c.Contacts[:0]
	c.HitBottom = false
}

// Add records a contact. A positive y MTV means the entity was pushed up,
// i.e. it stands on something.
func (c *CollisionResult) Add(with ecs.EntityID, mtv vmath.Vec) {
	c.Contacts = append(c.Contacts, Contact{With: with, MTV: mtv})
	if mtv.Y > 0 {
		c.HitBottom = true
	}
}

// Has reports whether a contact with the given partner was recorded.
func (c *CollisionResult) Has(with ecs.EntityID) bool {
	for _, ct := range c.Contacts {
		if ct.With == with {
			return true
		}
	}
	return false
}

// Consume drops the contacts once a system has acted on them. The resting
// flag survives for gameplay code later in the tick.
func (c *CollisionResult) Consume() {
	c.Contacts = c.Contacts[:0]
}

func (c *CollisionResult) HasHitBottom() bool { return c.HitBottom }

// Landed is true on the tick the resting flag switches on.
func (c *CollisionResult) Landed() bool { return c.HitBottom && !c.wasGrounded }

func (c *CollisionResult) Empty() bool { return len(c.Contacts) == 0 }

// Last returns the last recorded contact: the single-contact, last write
// wins view of the result.
func (c *CollisionResult) Last() (Contact, bool) {
	if len(c.Contacts) == 0 {
		return Contact{}, false
	}
	return c.Contacts[len(c.Contacts)-1], true
}
