package data

import (
	"fmt"
	"os"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/world"
	"gopkg.in/yaml.v3"
)

// Point is a YAML {x, y} pair.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p *Point) vec() vmath.Vec {
	if p == nil {
		return vmath.Vec{}
	}
	return vmath.V(p.X, p.Y)
}

type ShapeEntry struct {
	Kind   string  `yaml:"kind"` // "circle", "rect"
	Radius float64 `yaml:"radius"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type BodyEntry struct {
	Mass     float64 `yaml:"mass"` // 0 = immovable
	Velocity *Point  `yaml:"velocity"`
}

type LayerEntry struct {
	Category uint32 `yaml:"category"`
	Ignore   uint32 `yaml:"ignore"`
}

type AnimationEntry struct {
	Name   string `yaml:"name"`
	Length int    `yaml:"length"` // ticks per frame
	Frames []int  `yaml:"frames"`
}

type SpriteEntry struct {
	FrameCount int              `yaml:"frame_count"`
	Current    string           `yaml:"current"`
	Animations []AnimationEntry `yaml:"animations"`
}

type ControllerEntry struct {
	Script      string  `yaml:"script"`
	Speed       float64 `yaml:"speed"`
	JumpImpulse float64 `yaml:"jump_impulse"`
}

// SceneEntity is one entity record of a scene file. Omitted parts are not
// attached: no shape means no collider, no body means nothing integrates it.
type SceneEntity struct {
	Name         string           `yaml:"name"`
	Position     Point            `yaml:"position"`
	Rotation     float64          `yaml:"rotation"`
	Scale        *Point           `yaml:"scale"` // default (1,1)
	Shape        *ShapeEntry      `yaml:"shape"`
	Body         *BodyEntry       `yaml:"body"`
	Collisions   *bool            `yaml:"collisions"` // default: movable body with a shape
	Layer        *LayerEntry      `yaml:"layer"`
	Sprite       *SpriteEntry     `yaml:"sprite"`
	Controller   *ControllerEntry `yaml:"controller"`
	CameraTarget bool             `yaml:"camera_target"`
}

// Scene is a parsed scene file.
type Scene struct {
	Name     string        `yaml:"name"`
	Entities []SceneEntity `yaml:"entities"`
}

// LoadScene loads a scene YAML file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw, path)
}

// ParseScene decodes and validates a scene. name is only used in errors.
func ParseScene(raw []byte, name string) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", name, err)
	}
	for i := range s.Entities {
		if err := s.Entities[i].validate(); err != nil {
			return nil, fmt.Errorf("scene %s: entity %d (%s): %w", name, i, s.Entities[i].Name, err)
		}
	}
	return &s, nil
}

func (e *SceneEntity) validate() error {
	if e.Shape != nil {
		if _, err := e.Shape.shape(); err != nil {
			return err
		}
	}
	if e.Body != nil && e.Body.Mass < 0 {
		return fmt.Errorf("negative mass %v", e.Body.Mass)
	}
	if e.Sprite != nil {
		for _, a := range e.Sprite.Animations {
			if len(a.Frames) == 0 {
				return fmt.Errorf("animation %q has no frames", a.Name)
			}
			for _, f := range a.Frames {
				if f < 0 || (e.Sprite.FrameCount > 0 && f >= e.Sprite.FrameCount) {
					return fmt.Errorf("animation %q: frame %d outside sheet of %d", a.Name, f, e.Sprite.FrameCount)
				}
			}
		}
	}
	if e.Controller != nil && e.Controller.Script == "" {
		return fmt.Errorf("controller without script")
	}
	return nil
}

func (s *ShapeEntry) shape() (component.Shape, error) {
	switch component.ParseShapeKind(s.Kind) {
	case component.ShapeCircle:
		if s.Radius <= 0 {
			return component.Shape{}, fmt.Errorf("circle radius must be positive, got %v", s.Radius)
		}
		return component.Circle(s.Radius), nil
	case component.ShapeRect:
		if s.Width <= 0 || s.Height <= 0 {
			return component.Shape{}, fmt.Errorf("rect size must be positive, got %vx%v", s.Width, s.Height)
		}
		return component.Rect(s.Width, s.Height), nil
	case component.ShapeNone:
		if s.Kind == "" || s.Kind == "none" {
			return component.Shape{}, nil
		}
	}
	return component.Shape{}, fmt.Errorf("unknown shape kind %q", s.Kind)
}

// Spec converts the record into a spawn description. Each call builds
// fresh component values.
func (e *SceneEntity) Spec() world.EntitySpec {
	spec := world.EntitySpec{
		Name:     e.Name,
		Position: e.Position.vec(),
		Rotation: e.Rotation,
		Follow:   e.CameraTarget,
	}
	if e.Scale != nil {
		spec.Scale = e.Scale.vec()
	}
	if e.Shape != nil {
		if sh, err := e.Shape.shape(); err == nil && sh.Kind != component.ShapeNone {
			spec.Collider = &sh
		}
	}
	if e.Body != nil {
		rb := component.NewRigidBody(e.Body.Mass)
		rb.Velocity = e.Body.Velocity.vec()
		spec.Body = rb
	}
	if e.Collisions != nil {
		spec.Collisions = *e.Collisions
	} else {
		spec.Collisions = spec.Collider != nil && spec.Body != nil && !spec.Body.Immovable()
	}
	if e.Layer != nil {
		spec.Layer = &component.CollisionLayer{Category: e.Layer.Category, Ignore: e.Layer.Ignore}
	}
	if e.Sprite != nil {
		sp := component.NewSprite(e.Sprite.FrameCount)
		for _, a := range e.Sprite.Animations {
			sp.Add(a.Name, component.NewAnimation(a.Length, a.Frames...))
		}
		if e.Sprite.Current != "" {
			sp.SetAnimation(e.Sprite.Current)
		}
		spec.Sprite = sp
	}
	if e.Controller != nil {
		spec.Controller = &component.Controller{
			Script:      e.Controller.Script,
			Speed:       e.Controller.Speed,
			JumpImpulse: e.Controller.JumpImpulse,
		}
	}
	return spec
}

// Spawn creates every entity of the scene in file order.
func (s *Scene) Spawn(ws *world.State) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(s.Entities))
	for i := range s.Entities {
		ids = append(ids, ws.Spawn(s.Entities[i].Spec()))
	}
	return ids
}

// Count returns the number of entity records.
func (s *Scene) Count() int {
	return len(s.Entities)
}
