package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/config"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/event"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/input"
	"github.com/whale2d/sim2d/internal/scripting"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

type sim struct {
	ws     *world.State
	runner *coresys.Runner
	bus    *event.Bus
	cfg    *config.Config
	pipe   *Pipeline
}

func newSim(t *testing.T, mutate func(*config.Config), deps Deps) *sim {
	t.Helper()
	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}
	ws := world.NewState(input.NewKeys(cfg.Input.HoldTicks))
	bus := event.NewBus()
	deps.Bus = bus
	deps.Log = zap.NewNop()
	r := coresys.NewRunner()
	p := RegisterAll(r, ws, cfg, deps)
	return &sim{ws: ws, runner: r, bus: bus, cfg: cfg, pipe: p}
}

func (s *sim) run(ticks int) {
	for i := 0; i < ticks; i++ {
		s.runner.Tick(s.cfg.Simulation.TickRate)
	}
}

func (s *sim) ground() ecs.EntityID {
	shape := component.Rect(20, 2)
	return s.ws.Spawn(world.EntitySpec{
		Name:     "ground",
		Collider: &shape,
		Body:     component.NewRigidBody(0),
	})
}

func (s *sim) ball(pos vmath.Vec) ecs.EntityID {
	shape := component.Circle(1)
	return s.ws.Spawn(world.EntitySpec{
		Name:       "ball",
		Position:   pos,
		Collider:   &shape,
		Body:       component.NewRigidBody(1),
		Collisions: true,
	})
}

func TestFallingCircleRestsOnGround(t *testing.T) {
	s := newSim(t, nil, Deps{})
	g := s.ground()
	b := s.ball(vmath.V(0, 5))

	var landed []event.Landed
	event.Subscribe(s.bus, func(ev event.Landed) { landed = append(landed, ev) })

	s.run(200)

	tr, _ := s.ws.Transforms.Get(b)
	rb, _ := s.ws.Bodies.Get(b)
	res, _ := s.ws.Collisions.Get(b)
	assert.InDelta(t, 2.0, tr.Position.Y, 1e-9)
	assert.Equal(t, 0.0, tr.Position.X)
	assert.Equal(t, 0.0, rb.Velocity.Y)
	assert.True(t, res.HasHitBottom())

	gt, _ := s.ws.Transforms.Get(g)
	assert.Equal(t, vmath.Vec{}, gt.Position, "immovable ground never moves")

	require.Len(t, landed, 1)
	assert.Equal(t, b, landed[0].Entity)
	assert.Equal(t, uint64(6), landed[0].Tick)
}

func TestContactEventsNameBothEntities(t *testing.T) {
	s := newSim(t, nil, Deps{})
	g := s.ground()
	b := s.ball(vmath.V(0, 1.5))

	var contacts []event.Contact
	event.Subscribe(s.bus, func(ev event.Contact) { contacts = append(contacts, ev) })

	s.run(2)
	require.NotEmpty(t, contacts)
	assert.Equal(t, b, contacts[0].Entity)
	assert.Equal(t, g, contacts[0].With)
	assert.Greater(t, contacts[0].MTV.Y, 0.0)
}

func TestLastPolicyCorrectsInsteadOfIntegrating(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.Resolution = config.ResolveLast }, Deps{})
	s.ground()
	b := s.ball(vmath.V(0, 1.9))
	assert.Nil(t, s.pipe.Repulsion)

	tr, _ := s.ws.Transforms.Get(b)
	rb, _ := s.ws.Bodies.Get(b)
	res, _ := s.ws.Collisions.Get(b)

	s.run(1)
	assert.InDelta(t, 1.9-9.9/60, tr.Position.Y, 1e-12, "no contact yet, body integrates")
	require.Len(t, res.Contacts, 1)

	s.run(1)
	assert.InDelta(t, 2.0, tr.Position.Y, 1e-9)
	assert.Equal(t, 0.0, rb.Velocity.Y)
	assert.True(t, res.Empty())
}

func TestAllPolicyResolvesSameTick(t *testing.T) {
	s := newSim(t, nil, Deps{})
	s.ground()
	b := s.ball(vmath.V(0, 1.9))
	require.NotNil(t, s.pipe.Repulsion)

	s.run(1)
	tr, _ := s.ws.Transforms.Get(b)
	rb, _ := s.ws.Bodies.Get(b)
	assert.InDelta(t, 2.0, tr.Position.Y, 1e-9)
	assert.Equal(t, 0.0, rb.Velocity.Y)
}

func TestRepulsionAppliesEveryContact(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.GravityY = 0 }, Deps{})
	wall := component.Rect(2, 2)
	s.ws.Spawn(world.EntitySpec{Position: vmath.V(-1.5, 0), Collider: &wall})
	s.ws.Spawn(world.EntitySpec{Position: vmath.V(0, -1.5), Collider: &wall})

	box := component.Rect(2, 2)
	b := s.ws.Spawn(world.EntitySpec{
		Collider:   &box,
		Body:       component.NewRigidBody(1),
		Collisions: true,
	})

	s.run(1)
	tr, _ := s.ws.Transforms.Get(b)
	res, _ := s.ws.Collisions.Get(b)
	require.Len(t, res.Contacts, 2)
	assert.InDelta(t, 0.5, tr.Position.X, 1e-12)
	assert.InDelta(t, 0.5, tr.Position.Y, 1e-12)
}

func TestLayerPasses(t *testing.T) {
	tests := []struct {
		name   string
		layers []uint32
		ball   component.CollisionLayer
		ground component.CollisionLayer
		want   int
	}{
		{"same layer", []uint32{1}, component.CollisionLayer{Category: 1}, component.CollisionLayer{Category: 1}, 1},
		{"disjoint layers", []uint32{1}, component.CollisionLayer{Category: 1}, component.CollisionLayer{Category: 2}, 0},
		{"second pass only", []uint32{1, 2}, component.CollisionLayer{Category: 3}, component.CollisionLayer{Category: 2}, 1},
		{"ball not in pass", []uint32{2}, component.CollisionLayer{Category: 1}, component.CollisionLayer{Category: 2}, 0},
		{"ignored obstacle", []uint32{1}, component.CollisionLayer{Category: 1}, component.CollisionLayer{Category: 1, Ignore: 1}, 0},
		{"pair recorded once", []uint32{1, 2}, component.CollisionLayer{Category: 3}, component.CollisionLayer{Category: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSim(t, func(c *config.Config) {
				c.Physics.Layers = tt.layers
				c.Physics.GravityY = 0
			}, Deps{})
			ground := component.Rect(20, 2)
			s.ws.Spawn(world.EntitySpec{Collider: &ground, Layer: &tt.ground})
			circle := component.Circle(1)
			b := s.ws.Spawn(world.EntitySpec{
				Position:   vmath.V(0, 1.5),
				Collider:   &circle,
				Collisions: true,
				Layer:      &tt.ball,
			})

			s.run(1)
			res, _ := s.ws.Collisions.Get(b)
			assert.Len(t, res.Contacts, tt.want)
		})
	}
}

func TestEntitiesBelowKillYAreDestroyed(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Simulation.KillY = -10 }, Deps{})
	b := s.ball(vmath.V(0, 5))

	var destroyed []event.Destroyed
	event.Subscribe(s.bus, func(ev event.Destroyed) { destroyed = append(destroyed, ev) })

	s.run(12)
	assert.True(t, s.ws.ECS.Alive(b))

	s.run(1)
	assert.False(t, s.ws.ECS.Alive(b))
	assert.False(t, s.ws.Transforms.Has(b))

	s.run(1)
	require.Len(t, destroyed, 1)
	assert.Equal(t, b, destroyed[0].Entity)
}

type fakeController struct {
	seen []scripting.ControllerContext
	cmds []scripting.Command
}

func (f *fakeController) RunController(ctx scripting.ControllerContext) []scripting.Command {
	f.seen = append(f.seen, ctx)
	return f.cmds
}

func TestControllerAppliesCommands(t *testing.T) {
	ctl := &fakeController{cmds: []scripting.Command{
		{Type: scripting.CmdImpulse, X: 2},
		{Type: scripting.CmdFaceLeft},
		{Type: scripting.CmdAnimation, Name: "run"},
		{Type: "teleport"},
	}}
	s := newSim(t, func(c *config.Config) { c.Physics.GravityY = 0 }, Deps{Controllers: ctl})

	sp := component.NewSprite(4).
		Add("idle", component.NewAnimation(2, 0)).
		Add("run", component.NewAnimation(2, 1, 2, 3))
	id := s.ws.Spawn(world.EntitySpec{
		Name:       "hero",
		Body:       component.NewRigidBody(2),
		Sprite:     sp,
		Controller: &component.Controller{Script: "hero", Speed: 3},
	})

	s.run(1)
	require.Len(t, ctl.seen, 1)
	assert.Equal(t, "hero", ctl.seen[0].Script)
	assert.Equal(t, "hero", ctl.seen[0].Name)
	assert.Equal(t, 3.0, ctl.seen[0].Speed)
	assert.Equal(t, 2.0, ctl.seen[0].Mass)
	assert.Equal(t, "idle", ctl.seen[0].Animation)
	assert.Equal(t, uint64(1), ctl.seen[0].Tick)

	tr, _ := s.ws.Transforms.Get(id)
	rb, _ := s.ws.Bodies.Get(id)
	assert.Equal(t, 1.0, rb.Velocity.X)
	assert.Equal(t, 1.0, tr.Position.X)
	assert.True(t, tr.FacingLeft())
	assert.Equal(t, "run", sp.Current())
}

func TestControllerReadsHeldKeys(t *testing.T) {
	src := `
function walker(ctx)
  if is_pressed("KeyD") then
    return {{type = "translate", x = ctx.speed, y = 0}}
  end
  return {}
end`
	cfg := config.Defaults()
	cfg.Input.HoldTicks = 2
	ws := world.NewState(input.NewKeys(cfg.Input.HoldTicks))
	eng, err := scripting.NewEngineFromSource(src, ws.Keys, zap.NewNop())
	require.NoError(t, err)
	defer eng.Close()

	r := coresys.NewRunner()
	RegisterAll(r, ws, cfg, Deps{Controllers: eng})
	id := ws.Spawn(world.EntitySpec{Controller: &component.Controller{Script: "walker", Speed: 1}})

	ws.Keys.Press("KeyD")
	for i := 0; i < 4; i++ {
		r.Tick(cfg.Simulation.TickRate)
	}
	tr, _ := ws.Transforms.Get(id)
	assert.Equal(t, 2.0, tr.Position.X, "press held for two ticks")
}

func TestAnimationSystemStepsSprites(t *testing.T) {
	s := newSim(t, nil, Deps{})
	sp := component.NewSprite(0).Add("spin", component.NewAnimation(1, 4, 5))
	target := s.ws.Spawn(world.EntitySpec{Position: vmath.V(3, 4), Sprite: sp, Follow: true})

	f, ok := sp.Frame()
	require.True(t, ok)
	assert.Equal(t, 4, f)

	s.run(1)
	f, _ = sp.Frame()
	assert.Equal(t, 5, f)
	assert.Equal(t, vmath.V(3, 4), s.ws.Camera.Position)
	assert.True(t, s.ws.ECS.Alive(target))
}

type fakeWriter struct {
	ticks []uint64
	err   error
}

func (f *fakeWriter) SaveSnapshot(_ context.Context, tick uint64, _ uint64, bodies []world.BodyState) error {
	f.ticks = append(f.ticks, tick)
	return f.err
}

func TestSnapshotInterval(t *testing.T) {
	w := &fakeWriter{}
	s := newSim(t, func(c *config.Config) { c.Persist.SnapshotInterval = 3 }, Deps{Snapshots: w})
	s.ball(vmath.V(0, 5))

	s.run(7)
	assert.Equal(t, []uint64{3, 6}, w.ticks)

	s.pipe.Snapshot.Save()
	assert.Equal(t, []uint64{3, 6, 7}, w.ticks)
}

func TestFinalSaveSkipsStoredTick(t *testing.T) {
	w := &fakeWriter{}
	s := newSim(t, func(c *config.Config) { c.Persist.SnapshotInterval = 3 }, Deps{Snapshots: w})
	s.ball(vmath.V(0, 5))

	s.run(6)
	s.pipe.Snapshot.Save()
	assert.Equal(t, []uint64{3, 6}, w.ticks)

	// a failed write is retried by the next Save
	w.err = errors.New("db down")
	s.run(3)
	w.err = nil
	s.pipe.Snapshot.Save()
	assert.Equal(t, []uint64{3, 6, 9, 9}, w.ticks)
}

func TestSnapshotErrorsDoNotStopTheLoop(t *testing.T) {
	w := &fakeWriter{err: errors.New("db down")}
	s := newSim(t, func(c *config.Config) { c.Persist.SnapshotInterval = 1 }, Deps{Snapshots: w})
	s.run(3)
	assert.Len(t, w.ticks, 3)
	assert.Equal(t, uint64(3), s.runner.Ticks())
}

func TestPipelinePhaseOrder(t *testing.T) {
	s := newSim(t, nil, Deps{Controllers: &fakeController{}, Snapshots: &fakeWriter{}})
	var phases []coresys.Phase
	for _, sys := range s.runner.Systems() {
		phases = append(phases, sys.Phase())
	}
	assert.Equal(t, []coresys.Phase{
		coresys.PhaseInput,
		coresys.PhaseInput,
		coresys.PhaseControl,
		coresys.PhasePhysics,
		coresys.PhaseCollision,
		coresys.PhaseResolve,
		coresys.PhaseAnimate,
		coresys.PhasePersist,
		coresys.PhaseCleanup,
	}, phases)
	assert.IsType(t, &InputSystem{}, s.runner.Systems()[0])
}

func TestRunsAreDeterministic(t *testing.T) {
	build := func() *sim {
		s := newSim(t, nil, Deps{})
		s.ground()
		s.ball(vmath.V(0, 5))
		s.ball(vmath.V(0.5, 8))
		box := component.Rect(1, 1)
		s.ws.Spawn(world.EntitySpec{
			Position:   vmath.V(-1, 12),
			Collider:   &box,
			Body:       component.NewRigidBody(3),
			Collisions: true,
		})
		return s
	}
	a, b := build(), build()
	for i := 0; i < 120; i++ {
		a.run(1)
		b.run(1)
		require.Equal(t, a.ws.Digest(), b.ws.Digest(), "tick %d", i+1)
	}
}


func TestBroadPhaseMatchesExhaustiveScan(t *testing.T) {
	build := func(cellSize float64) *sim {
		s := newSim(t, func(c *config.Config) { c.Physics.CellSize = cellSize }, Deps{})
		s.ground()
		for i := 0; i < 12; i++ {
			s.ball(vmath.V(float64(i%4)*1.5-3, 2+float64(i)*1.2))
		}
		return s
	}
	grid, brute := build(1.5), build(0)
	assert.NotNil(t, grid.pipe.Collision.grid)
	assert.Nil(t, brute.pipe.Collision.grid)
	for i := 0; i < 150; i++ {
		grid.run(1)
		brute.run(1)
		require.Equal(t, brute.ws.Digest(), grid.ws.Digest(), "tick %d", i+1)
	}
}

type fakeFeed struct{ ticks []uint64 }

func (f *fakeFeed) Broadcast(tick, _ uint64, bodies []world.BodyState) {
	f.ticks = append(f.ticks, tick)
}

func TestFeedInterval(t *testing.T) {
	f := &fakeFeed{}
	s := newSim(t, func(c *config.Config) { c.Feed.Interval = 2 }, Deps{Feed: f})
	s.run(5)
	assert.Equal(t, []uint64{2, 4}, f.ticks)
}
