package system

import (
	"time"

	"github.com/whale2d/sim2d/internal/core/event"
	coresys "github.com/whale2d/sim2d/internal/core/system"
)

// EventDispatchSystem swaps the bus buffers and delivers last tick's
// events. Phase 0 (Input), registered after InputSystem.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
