package system

import (
	"time"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/config"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/event"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/physics"
	"github.com/whale2d/sim2d/internal/world"
)

// PhysicsSystem integrates every rigid body once per tick. Under the "last"
// resolution policy a body holding a contact is instead corrected by the
// most recent MTV and skips integration for this tick. Phase 2 (Physics).
type PhysicsSystem struct {
	ws      *world.State
	bus     *event.Bus
	gravity vmath.Vec
	consume bool
	killY   float64
}

func NewPhysicsSystem(ws *world.State, bus *event.Bus, cfg config.PhysicsConfig, killY float64) *PhysicsSystem {
	return &PhysicsSystem{
		ws:      ws,
		bus:     bus,
		gravity: vmath.V(cfg.GravityX, cfg.GravityY),
		consume: cfg.Resolution == config.ResolveLast,
		killY:   killY,
	}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(_ time.Duration) {
	ecs.Each2(s.ws.Transforms, s.ws.Bodies, func(id ecs.EntityID, t *component.Transform, rb *component.RigidBody) {
		if s.consume && !rb.Immovable() && s.correct(id, t, rb) {
			return
		}
		physics.Integrate(t, rb, s.gravity)
		if !rb.Immovable() && t.Position.Y < s.killY {
			s.ws.ECS.MarkForDestruction(id)
			if s.bus != nil {
				event.Emit(s.bus, event.Destroyed{Entity: id, Reason: "fell out of world"})
			}
		}
	})
}

// correct applies the last recorded contact, reporting whether one existed.
func (s *PhysicsSystem) correct(id ecs.EntityID, t *component.Transform, rb *component.RigidBody) bool {
	res, ok := s.ws.Collisions.Get(id)
	if !ok {
		return false
	}
	c, ok := res.Last()
	if !ok {
		return false
	}
	physics.ApplyCorrection(t, rb, c.MTV)
	res.Consume()
	return true
}
