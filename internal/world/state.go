package world

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/input"
)

// State holds the ECS world, its component stores and the resources shared
// by systems. Accessed only from the simulation goroutine, so no locks.
type State struct {
	ECS *ecs.World

	Names       *ecs.Store[string]
	Transforms  *ecs.Store[component.Transform]
	Colliders   *ecs.Store[component.Collider]
	Bodies      *ecs.Store[component.RigidBody]
	Collisions  *ecs.Store[component.CollisionResult]
	Layers      *ecs.Store[component.CollisionLayer]
	Sprites     *ecs.Store[component.Sprite]
	Controllers *ecs.Store[component.Controller]

	Keys   *input.Keys
	Camera component.Transform

	cameraTarget ecs.EntityID
	hasTarget    bool
	tick         uint64
}

func NewState(keys *input.Keys) *State {
	w := ecs.NewWorld()
	r := w.Registry()
	if keys == nil {
		keys = input.NewKeys(1)
	}
	return &State{
		ECS:         w,
		Names:       ecs.Register[string](r),
		Transforms:  ecs.Register[component.Transform](r),
		Colliders:   ecs.Register[component.Collider](r),
		Bodies:      ecs.Register[component.RigidBody](r),
		Collisions:  ecs.Register[component.CollisionResult](r),
		Layers:      ecs.Register[component.CollisionLayer](r),
		Sprites:     ecs.Register[component.Sprite](r),
		Controllers: ecs.Register[component.Controller](r),
		Keys:        keys,
		Camera:      *component.NewTransform(vmath.Vec{}),
	}
}

// EntitySpec describes an entity to spawn. Nil parts are not attached;
// a zero Scale becomes (1,1).
type EntitySpec struct {
	Name       string
	Position   vmath.Vec
	Rotation   float64
	Scale      vmath.Vec
	Collider   *component.Shape
	Body       *component.RigidBody
	Collisions bool // receive CollisionResult and thus collision responses
	Layer      *component.CollisionLayer
	Sprite     *component.Sprite
	Controller *component.Controller
	Follow     bool // camera target
}

// Spawn creates an entity from spec and returns its id.
func (s *State) Spawn(spec EntitySpec) ecs.EntityID {
	id := s.ECS.CreateEntity()
	if spec.Name != "" {
		name := spec.Name
		s.Names.Set(id, &name)
	}

	t := component.NewTransform(spec.Position)
	t.Rotation = spec.Rotation
	if !spec.Scale.IsZero() {
		t.Scale = spec.Scale
	}
	s.Transforms.Set(id, t)

	if spec.Collider != nil {
		s.Colliders.Set(id, component.NewCollider(*spec.Collider))
	}
	if spec.Body != nil {
		rb := *spec.Body
		s.Bodies.Set(id, &rb)
	}
	if spec.Collisions {
		s.Collisions.Set(id, &component.CollisionResult{})
	}
	if spec.Layer != nil {
		l := *spec.Layer
		s.Layers.Set(id, &l)
	}
	if spec.Sprite != nil {
		s.Sprites.Set(id, spec.Sprite)
	}
	if spec.Controller != nil {
		c := *spec.Controller
		s.Controllers.Set(id, &c)
	}
	if spec.Follow {
		s.SetCameraTarget(id)
	}
	return id
}

// Name returns the entity's name, or "" when unnamed.
func (s *State) Name(id ecs.EntityID) string {
	if n, ok := s.Names.Get(id); ok {
		return *n
	}
	return ""
}

// Layer returns the entity's collision layer; nil means the default layer.
func (s *State) Layer(id ecs.EntityID) *component.CollisionLayer {
	l, _ := s.Layers.Get(id)
	return l
}

func (s *State) SetCameraTarget(id ecs.EntityID) {
	s.cameraTarget = id
	s.hasTarget = true
}

func (s *State) CameraTarget() (ecs.EntityID, bool) {
	return s.cameraTarget, s.hasTarget
}

// FollowCamera centres the camera on its target, if it is still alive.
func (s *State) FollowCamera() {
	if !s.hasTarget || !s.ECS.Alive(s.cameraTarget) {
		return
	}
	if t, ok := s.Transforms.Get(s.cameraTarget); ok {
		s.Camera.Position = t.Position
	}
}

// Forget drops references the state keeps to destroyed entities.
func (s *State) Forget(destroyed []ecs.EntityID) {
	for _, id := range destroyed {
		if s.hasTarget && s.cameraTarget == id {
			s.hasTarget = false
		}
	}
}

// BeginTick advances the tick counter.
func (s *State) BeginTick() { s.tick++ }

// EndTick ages held keys so a press is visible to the whole tick it
// arrived before.
func (s *State) EndTick() { s.Keys.Advance() }

// Tick returns the number of the tick in progress (1-based).
func (s *State) Tick() uint64 { return s.tick }

// BodyState is a flat view of one entity used by snapshots and viewers.
type BodyState struct {
	Entity   ecs.EntityID
	Name     string
	Position vmath.Vec
	Velocity vmath.Vec
	Grounded bool
}

// BodyStates lists every entity with a transform in ascending entity order.
func (s *State) BodyStates() []BodyState {
	out := make([]BodyState, 0, s.Transforms.Len())
	s.Transforms.Each(func(id ecs.EntityID, t *component.Transform) {
		bs := BodyState{Entity: id, Name: s.Name(id), Position: t.Position}
		if rb, ok := s.Bodies.Get(id); ok {
			bs.Velocity = rb.Velocity
		}
		if c, ok := s.Collisions.Get(id); ok {
			bs.Grounded = c.HasHitBottom()
		}
		out = append(out, bs)
	})
	return out
}

// Digest hashes positions and velocities of all entities. Two runs fed the
// same scene and input produce the same digest tick for tick.
func (s *State) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	for _, b := range s.BodyStates() {
		put(uint64(b.Entity))
		put(math.Float64bits(b.Position.X))
		put(math.Float64bits(b.Position.Y))
		put(math.Float64bits(b.Velocity.X))
		put(math.Float64bits(b.Velocity.Y))
	}
	return h.Sum64()
}
