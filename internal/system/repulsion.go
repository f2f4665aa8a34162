package system

import (
	"time"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/physics"
	"github.com/whale2d/sim2d/internal/world"
)

// RepulsionSystem pushes each movable body out of everything it overlaps,
// applying contacts in recorded order. Phase 4 (Resolve).
type RepulsionSystem struct {
	ws *world.State
}

func NewRepulsionSystem(ws *world.State) *RepulsionSystem {
	return &RepulsionSystem{ws: ws}
}

func (s *RepulsionSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *RepulsionSystem) Update(_ time.Duration) {
	ecs.Each3(s.ws.Collisions, s.ws.Transforms, s.ws.Bodies, func(_ ecs.EntityID, res *component.CollisionResult, t *component.Transform, rb *component.RigidBody) {
		if rb.Immovable() {
			return
		}
		for _, c := range res.Contacts {
			physics.ApplyCorrection(t, rb, c.MTV)
		}
	})
}
