package system

import (
	"time"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	coresys "github.com/whale2d/sim2d/internal/core/system"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/scripting"
	"github.com/whale2d/sim2d/internal/world"
	"go.uber.org/zap"
)

// ControllerRunner evaluates one controller script. Implemented by
// *scripting.Engine.
type ControllerRunner interface {
	RunController(ctx scripting.ControllerContext) []scripting.Command
}

// ControllerSystem hands every controlled entity to its script and applies
// the returned commands. Phase 1 (Control).
type ControllerSystem struct {
	ws     *world.State
	runner ControllerRunner
	log    *zap.Logger
}

func NewControllerSystem(ws *world.State, runner ControllerRunner, log *zap.Logger) *ControllerSystem {
	return &ControllerSystem{ws: ws, runner: runner, log: log}
}

func (s *ControllerSystem) Phase() coresys.Phase { return coresys.PhaseControl }

func (s *ControllerSystem) Update(_ time.Duration) {
	if s.runner == nil {
		return
	}
	ecs.Each2(s.ws.Controllers, s.ws.Transforms, func(id ecs.EntityID, c *component.Controller, t *component.Transform) {
		rb, _ := s.ws.Bodies.Get(id)
		sp, _ := s.ws.Sprites.Get(id)
		cmds := s.runner.RunController(s.context(id, c, t, rb, sp))
		for _, cmd := range cmds {
			s.apply(id, cmd, t, rb, sp)
		}
	})
}

func (s *ControllerSystem) context(id ecs.EntityID, c *component.Controller, t *component.Transform, rb *component.RigidBody, sp *component.Sprite) scripting.ControllerContext {
	ctx := scripting.ControllerContext{
		Script:      c.Script,
		Entity:      uint64(id),
		Name:        s.ws.Name(id),
		X:           t.Position.X,
		Y:           t.Position.Y,
		FacingLeft:  t.FacingLeft(),
		Speed:       c.Speed,
		JumpImpulse: c.JumpImpulse,
		Tick:        s.ws.Tick(),
	}
	if rb != nil {
		ctx.VX, ctx.VY = rb.Velocity.X, rb.Velocity.Y
		ctx.Mass = rb.Mass
	}
	if res, ok := s.ws.Collisions.Get(id); ok {
		ctx.Grounded = res.HasHitBottom()
	}
	if sp != nil {
		ctx.Animation = sp.Current()
	}
	return ctx
}

func (s *ControllerSystem) apply(id ecs.EntityID, cmd scripting.Command, t *component.Transform, rb *component.RigidBody, sp *component.Sprite) {
	switch cmd.Type {
	case scripting.CmdImpulse:
		if rb != nil {
			rb.Impulse(vmath.V(cmd.X, cmd.Y))
		}
	case scripting.CmdTranslate:
		t.Translate(vmath.V(cmd.X, cmd.Y))
	case scripting.CmdFaceLeft:
		t.FaceLeft()
	case scripting.CmdFaceRight:
		t.FaceRight()
	case scripting.CmdAnimation:
		if sp != nil {
			sp.SetAnimation(cmd.Name)
		}
	default:
		s.log.Warn("unknown controller command",
			zap.String("type", cmd.Type),
			zap.Uint32("entity", id.Index()))
	}
}
