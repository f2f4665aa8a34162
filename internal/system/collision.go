package system

import (
	"time"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/config"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/event"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/physics"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

// CollisionSystem is the narrow-phase detector. Every entity carrying a
// CollisionResult is tested against every other collider, once per
// configured layer mask; results accumulate across passes and each pair is
// recorded at most once per tick. With a broad-phase grid only entities
// sharing a cell are tested; candidates keep ascending entity order, so
// results match the exhaustive scan. Phase 3 (Collision).
type CollisionSystem struct {
	ws         *world.State
	bus        *event.Bus
	layers     []uint32
	grid       *world.Grid // nil: test every pair
	logContact bool
	log        *zap.Logger
}

func NewCollisionSystem(ws *world.State, bus *event.Bus, cfg config.PhysicsConfig, log *zap.Logger) *CollisionSystem {
	layers := cfg.Layers
	if len(layers) == 0 {
		layers = []uint32{component.DefaultLayer}
	}
	s := &CollisionSystem{ws: ws, bus: bus, layers: layers, logContact: cfg.LogContact, log: log}
	if cfg.CellSize > 0 {
		s.grid = world.NewGrid(cfg.CellSize)
	}
	return s
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *CollisionSystem) Update(_ time.Duration) {
	s.ws.Collisions.Each(func(_ ecs.EntityID, res *component.CollisionResult) {
		res.Reset()
	})
	if s.grid != nil {
		s.grid.Reset()
		ecs.Each2(s.ws.Transforms, s.ws.Colliders, func(id ecs.EntityID, t *component.Transform, c *component.Collider) {
			if b, ok := world.Bounds(c.Shape(), t.Position); ok {
				s.grid.Insert(id, b)
			}
		})
	}
	for _, mask := range s.layers {
		s.pass(mask)
	}
	if s.bus == nil {
		return
	}
	tick := s.ws.Tick()
	s.ws.Collisions.Each(func(id ecs.EntityID, res *component.CollisionResult) {
		for _, c := range res.Contacts {
			event.Emit(s.bus, event.Contact{Tick: tick, Entity: id, With: c.With, MTV: c.MTV})
		}
		if res.Landed() {
			event.Emit(s.bus, event.Landed{Tick: tick, Entity: id})
		}
	})
}

func (s *CollisionSystem) pass(mask uint32) {
	ecs.Each3(s.ws.Transforms, s.ws.Colliders, s.ws.Collisions, func(e1 ecs.EntityID, t1 *component.Transform, c1 *component.Collider, res *component.CollisionResult) {
		if !s.ws.Layer(e1).In(mask) {
			return
		}
		test := func(e2 ecs.EntityID, t2 *component.Transform, c2 *component.Collider) {
			if e1 == e2 || res.Has(e2) || !s.ws.Layer(e2).Blocks(mask) {
				return
			}
			mtv, ok := physics.Collide(c1.Shape(), c2.Shape(), t1.Position, t2.Position)
			if !ok {
				return
			}
			res.Add(e2, mtv)
			if s.logContact {
				s.log.Debug("contact",
					zap.Uint32("entity", e1.Index()),
					zap.Uint32("with", e2.Index()),
					zap.Uint32("layer", mask),
					zap.Float64("mtv_x", mtv.X),
					zap.Float64("mtv_y", mtv.Y))
			}
		}

		if s.grid == nil {
			ecs.Each2(s.ws.Transforms, s.ws.Colliders, test)
			return
		}
		b, ok := world.Bounds(c1.Shape(), t1.Position)
		if !ok {
			return
		}
		for _, e2 := range s.grid.Query(b) {
			t2, ok := s.ws.Transforms.Get(e2)
			if !ok {
				continue
			}
			c2, ok := s.ws.Colliders.Get(e2)
			if !ok {
				continue
			}
			test(e2, t2, c2)
		}
	})
}
