package system

import (
	"time"

	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end
// and ages held keys. Phase 7 (Cleanup).
type CleanupSystem struct {
	ws *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{ws: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.ws.Forget(s.ws.ECS.FlushDestroyQueue())
	s.ws.EndTick()
}
