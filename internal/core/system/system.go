package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: advance key state, dispatch last tick's events
	PhaseControl                // 1: gameplay controllers turn input into impulses
	PhasePhysics                // 2: integrate forces, velocities, positions
	PhaseCollision              // 3: narrow-phase detection, writes CollisionResult
	PhaseResolve                // 4: repulsion (positional correction)
	PhaseAnimate                // 5: sprite animation timers
	PhasePersist                // 6: periodic snapshots
	PhaseCleanup                // 7: destroy queued entities
)

var phaseNames = [...]string{"input", "control", "physics", "collision", "resolve", "animate", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
