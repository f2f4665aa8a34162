package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/vmath"
	"github.com/whale2d/sim2d/internal/world"
)

const sceneYAML = `
name: test
entities:
  - name: ground
    position: {x: 0, y: -1}
    shape: {kind: rect, width: 40, height: 2}
    body: {mass: 0}
  - name: hero
    position: {x: 1, y: 4}
    scale: {x: -1, y: 1}
    shape: {kind: circle, radius: 0.5}
    body: {mass: 2, velocity: {x: 0.5, y: 0}}
    layer: {category: 3}
    camera_target: true
    controller: {script: player, speed: 0.2, jump_impulse: 4}
    sprite:
      frame_count: 8
      current: walk
      animations:
        - {name: idle, length: 10, frames: [0]}
        - {name: walk, length: 4, frames: [1, 2, 3, 4]}
  - name: marker
    position: {x: 5, y: 5}
  - name: sensor
    shape: {kind: box, width: 1, height: 1}
    collisions: true
`

func TestParseSceneSpawnsEntities(t *testing.T) {
	sc, err := ParseScene([]byte(sceneYAML), "test")
	require.NoError(t, err)
	assert.Equal(t, "test", sc.Name)
	assert.Equal(t, 4, sc.Count())

	ws := world.NewState(nil)
	ids := sc.Spawn(ws)
	require.Len(t, ids, 4)
	ground, hero, marker, sensor := ids[0], ids[1], ids[2], ids[3]

	// static ground: immovable body, no collision result
	rb, ok := ws.Bodies.Get(ground)
	require.True(t, ok)
	assert.True(t, rb.Immovable())
	assert.False(t, ws.Collisions.Has(ground))
	col, _ := ws.Colliders.Get(ground)
	assert.Equal(t, component.Rect(40, 2), col.Shape())

	tr, _ := ws.Transforms.Get(hero)
	assert.Equal(t, vmath.V(1, 4), tr.Position)
	assert.True(t, tr.FacingLeft())
	rb, _ = ws.Bodies.Get(hero)
	assert.Equal(t, 2.0, rb.Mass)
	assert.Equal(t, vmath.V(0.5, 0), rb.Velocity)
	assert.True(t, ws.Collisions.Has(hero))
	assert.Equal(t, uint32(3), ws.Layer(hero).Category)
	ctl, _ := ws.Controllers.Get(hero)
	assert.Equal(t, "player", ctl.Script)
	sp, _ := ws.Sprites.Get(hero)
	assert.Equal(t, "walk", sp.Current())
	assert.Equal(t, []string{"idle", "walk"}, sp.Names())
	ws.FollowCamera()
	assert.Equal(t, vmath.V(1, 4), ws.Camera.Position)

	tr, _ = ws.Transforms.Get(marker)
	assert.Equal(t, vmath.V(1, 1), tr.Scale)
	assert.False(t, ws.Colliders.Has(marker))
	assert.False(t, ws.Bodies.Has(marker))

	assert.True(t, ws.Collisions.Has(sensor))
	assert.False(t, ws.Bodies.Has(sensor))
}

func TestSpawnBuildsFreshComponents(t *testing.T) {
	sc, err := ParseScene([]byte(sceneYAML), "test")
	require.NoError(t, err)
	ws := world.NewState(nil)
	a := sc.Spawn(ws)
	b := sc.Spawn(ws)

	ra, _ := ws.Bodies.Get(a[1])
	rb, _ := ws.Bodies.Get(b[1])
	ra.Impulse(vmath.V(1, 0))
	assert.True(t, rb.Force.IsZero())

	sa, _ := ws.Sprites.Get(a[1])
	sb, _ := ws.Sprites.Get(b[1])
	assert.NotSame(t, sa, sb)
}

func TestParseSceneRejectsBadEntities(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown shape", "entities: [{name: a, shape: {kind: hexagon}}]"},
		{"zero radius", "entities: [{name: a, shape: {kind: circle}}]"},
		{"flat rect", "entities: [{name: a, shape: {kind: rect, width: 1}}]"},
		{"negative mass", "entities: [{name: a, body: {mass: -1}}]"},
		{"empty animation", "entities: [{name: a, sprite: {animations: [{name: idle}]}}]"},
		{"frame outside sheet", "entities: [{name: a, sprite: {frame_count: 2, animations: [{name: idle, frames: [2]}]}}]"},
		{"controller without script", "entities: [{name: a, controller: {speed: 1}}]"},
		{"not yaml", "entities: [oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene([]byte(tt.yaml), "bad")
			assert.Error(t, err)
		})
	}
}

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	sc, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, 4, sc.Count())

	_, err = LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
