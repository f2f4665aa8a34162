package event

import (
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

// Contact is emitted once per recorded collision pair per tick.
type Contact struct {
	Tick   uint64
	Entity ecs.EntityID
	With   ecs.EntityID
	MTV    vmath.Vec
}

// Landed is emitted when an entity's resting flag rises.
type Landed struct {
	Tick   uint64
	Entity ecs.EntityID
}

// Destroyed is emitted when an entity is queued for destruction by the simulation.
type Destroyed struct {
	Entity ecs.EntityID
	Reason string
}
