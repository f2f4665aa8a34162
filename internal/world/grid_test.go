package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

func TestBounds(t *testing.T) {
	b, ok := Bounds(component.Circle(1), vmath.V(2, 3))
	assert.True(t, ok)
	assert.Equal(t, AABB{Min: vmath.V(1, 2), Max: vmath.V(3, 4)}, b)

	b, ok = Bounds(component.Rect(4, 2), vmath.V(0, 0))
	assert.True(t, ok)
	assert.Equal(t, AABB{Min: vmath.V(-2, -1), Max: vmath.V(2, 1)}, b)

	_, ok = Bounds(component.Shape{}, vmath.V(0, 0))
	assert.False(t, ok)
}

func TestGridQuery(t *testing.T) {
	g := NewGrid(2)
	ground := ecs.NewEntityID(0, 0)
	ball := ecs.NewEntityID(1, 0)
	far := ecs.NewEntityID(2, 0)
	reused := ecs.NewEntityID(3, 5) // later generation sorts by index only

	gb, _ := Bounds(component.Rect(20, 2), vmath.V(0, -1))
	g.Insert(ground, gb)
	bb, _ := Bounds(component.Circle(0.5), vmath.V(1, 0.4))
	g.Insert(reused, bb)
	g.Insert(ball, bb)
	fb, _ := Bounds(component.Circle(0.5), vmath.V(50, 50))
	g.Insert(far, fb)

	got := g.Query(bb)
	assert.Equal(t, []ecs.EntityID{ground, ball, reused}, got)

	assert.Equal(t, []ecs.EntityID{far}, g.Query(fb))

	g.Reset()
	assert.Empty(t, g.Query(gb))
}

func TestGridNegativeCoordinates(t *testing.T) {
	g := NewGrid(4)
	a := ecs.NewEntityID(0, 0)
	b, _ := Bounds(component.Circle(0.5), vmath.V(-0.2, -0.2))
	g.Insert(a, b)
	// (-0.2,-0.2) ± 0.5 spans cells -1 and 0 on both axes
	q, _ := Bounds(component.Circle(0.1), vmath.V(-3.9, -3.9))
	assert.Equal(t, []ecs.EntityID{a}, g.Query(q))
}

func TestGridOverflowsUnmappableBoxes(t *testing.T) {
	g := NewGrid(4)
	near := ecs.NewEntityID(0, 0)
	flung := ecs.NewEntityID(1, 0)
	broken := ecs.NewEntityID(2, 0)
	wide := ecs.NewEntityID(3, 0)
	far := ecs.NewEntityID(4, 0)

	nb, _ := Bounds(component.Circle(0.5), vmath.V(1, 1))
	g.Insert(near, nb)
	fb, _ := Bounds(component.Circle(0.5), vmath.V(math.MaxFloat64/2, 0))
	g.Insert(flung, fb)
	bb, _ := Bounds(component.Circle(0.5), vmath.V(math.NaN(), math.Inf(1)))
	g.Insert(broken, bb)
	wb, _ := Bounds(component.Rect(1e6, 2), vmath.V(0, -1))
	g.Insert(wide, wb)
	xb, _ := Bounds(component.Circle(0.5), vmath.V(100, 100))
	g.Insert(far, xb)

	// overflowed entities are candidates for every mapped query
	assert.Equal(t, []ecs.EntityID{near, flung, broken, wide}, g.Query(nb))
	assert.Equal(t, []ecs.EntityID{flung, broken, wide, far}, g.Query(xb))

	// an unmappable query sees everything
	assert.Equal(t, []ecs.EntityID{near, flung, broken, wide, far}, g.Query(fb))

	g.Reset()
	assert.Empty(t, g.Query(fb))
	assert.Empty(t, g.Query(nb))
}
