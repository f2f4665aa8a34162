package system

import (
	"time"

	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/world"
)

// Broadcaster publishes body states to spectators. Implemented by
// *feed.Hub; it must not block the simulation goroutine.
type Broadcaster interface {
	Broadcast(tick, digest uint64, bodies []world.BodyState)
}

// FeedSystem publishes the world every interval ticks. Phase 6 (Persist).
type FeedSystem struct {
	ws        *world.State
	out       Broadcaster
	tickCount int
	interval  int
}

func NewFeedSystem(ws *world.State, out Broadcaster, intervalTicks int) *FeedSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &FeedSystem{ws: ws, out: out, interval: intervalTicks}
}

func (s *FeedSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *FeedSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.out.Broadcast(s.ws.Tick(), s.ws.Digest(), s.ws.BodyStates())
}
