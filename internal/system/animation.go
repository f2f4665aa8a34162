package system

import (
	"time"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/world"
)

// AnimationSystem steps every sprite's current animation and moves the
// camera onto its target. Phase 5 (Animate).
type AnimationSystem struct {
	ws *world.State
}

func NewAnimationSystem(ws *world.State) *AnimationSystem {
	return &AnimationSystem{ws: ws}
}

func (s *AnimationSystem) Phase() coresys.Phase { return coresys.PhaseAnimate }

func (s *AnimationSystem) Update(_ time.Duration) {
	s.ws.Sprites.Each(func(_ ecs.EntityID, sp *component.Sprite) {
		sp.Update()
	})
	s.ws.FollowCamera()
}
