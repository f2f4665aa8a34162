package system

import (
	"time"

	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/world"
)

// InputSystem opens a tick: it advances the tick counter so everything
// emitted this tick carries the right number. Key state itself is written
// by the front end between ticks. Phase 0 (Input).
type InputSystem struct {
	ws *world.State
}

func NewInputSystem(ws *world.State) *InputSystem {
	return &InputSystem{ws: ws}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.ws.BeginTick()
}
