package system

import (
	"github.com/whale2d/sim2d/internal/config"
	"github.com/whale2d/sim2d/internal/core/event"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

// Deps carries the optional collaborators of the simulation pipeline.
type Deps struct {
	Bus         *event.Bus       // nil disables event emission
	Controllers ControllerRunner // nil disables scripted controllers
	Snapshots   SnapshotWriter   // nil disables snapshots
	Feed        Broadcaster      // nil disables the spectator feed
	Log         *zap.Logger
}

// Pipeline holds the systems RegisterAll created, for callers that need to
// reach one directly (e.g. a final snapshot on shutdown).
type Pipeline struct {
	Physics   *PhysicsSystem
	Collision *CollisionSystem
	Repulsion *RepulsionSystem // nil under the "last" policy
	Snapshot  *SnapshotSystem  // nil when snapshots are off
}

// RegisterAll builds the standard per-tick pipeline on r. Exactly one
// resolution policy is wired: repulsion for "all", integrator-side
// correction for "last".
func RegisterAll(r *coresys.Runner, ws *world.State, cfg *config.Config, deps Deps) *Pipeline {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{}

	r.Register(NewInputSystem(ws))
	if deps.Bus != nil {
		r.Register(NewEventDispatchSystem(deps.Bus))
	}
	if deps.Controllers != nil {
		r.Register(NewControllerSystem(ws, deps.Controllers, log))
	}

	p.Physics = NewPhysicsSystem(ws, deps.Bus, cfg.Physics, cfg.Simulation.KillY)
	r.Register(p.Physics)

	p.Collision = NewCollisionSystem(ws, deps.Bus, cfg.Physics, log)
	r.Register(p.Collision)

	if cfg.Physics.Resolution != config.ResolveLast {
		p.Repulsion = NewRepulsionSystem(ws)
		r.Register(p.Repulsion)
	}

	r.Register(NewAnimationSystem(ws))

	if deps.Snapshots != nil {
		p.Snapshot = NewSnapshotSystem(ws, deps.Snapshots, log, cfg.Persist.SnapshotInterval, cfg.Persist.WriteTimeout)
		r.Register(p.Snapshot)
	}

	if deps.Feed != nil {
		r.Register(NewFeedSystem(ws, deps.Feed, cfg.Feed.Interval))
	}

	r.Register(NewCleanupSystem(ws))
	return p
}
