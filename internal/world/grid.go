package world

import (
	"math"
	"slices"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

// Grid is a uniform cell grid used as the collision broad phase. An entity
// occupies every cell its bounding box touches; queries return candidates,
// and the caller does the exact shape test. Boxes too large for the cell
// range, or with non-finite bounds, go into an overflow list that every
// query returns.
// Rebuilt once per tick from the simulation goroutine, no locks.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]ecs.EntityID
	overflow []ecs.EntityID
	all      []ecs.EntityID
	seen     map[ecs.EntityID]struct{}
}

const (
	// cellLimit bounds cell coordinates on both axes.
	cellLimit = 1 << 20
	// maxSpan is the most cells one box may occupy before it overflows.
	maxSpan = 1024
)

type cellKey struct {
	cx int32
	cy int32
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min vmath.Vec
	Max vmath.Vec
}

// Bounds returns the box enclosing shape s centred at p. None has no extent.
func Bounds(s component.Shape, p vmath.Vec) (AABB, bool) {
	var hx, hy float64
	switch s.Kind {
	case component.ShapeCircle:
		hx, hy = s.Radius, s.Radius
	case component.ShapeRect:
		hx, hy = s.Width/2, s.Height/2
	default:
		return AABB{}, false
	}
	return AABB{Min: vmath.V(p.X-hx, p.Y-hy), Max: vmath.V(p.X+hx, p.Y+hy)}, true
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]ecs.EntityID),
		seen:     make(map[ecs.EntityID]struct{}),
	}
}

type cellRange struct {
	x0, x1, y0, y1 int32
}

// span returns the cells b covers, or false when b has to overflow.
func (g *Grid) span(b AABB) (cellRange, bool) {
	fx0 := math.Floor(b.Min.X / g.cellSize)
	fx1 := math.Floor(b.Max.X / g.cellSize)
	fy0 := math.Floor(b.Min.Y / g.cellSize)
	fy1 := math.Floor(b.Max.Y / g.cellSize)
	for _, f := range [...]float64{fx0, fx1, fy0, fy1} {
		// NaN fails both comparisons
		if !(f >= -cellLimit && f <= cellLimit) {
			return cellRange{}, false
		}
	}
	if fx1 < fx0 || fy1 < fy0 || (fx1-fx0+1)*(fy1-fy0+1) > maxSpan {
		return cellRange{}, false
	}
	return cellRange{x0: int32(fx0), x1: int32(fx1), y0: int32(fy0), y1: int32(fy1)}, true
}

// Reset empties the grid, keeping cell storage for the next build.
func (g *Grid) Reset() {
	for k, ids := range g.cells {
		g.cells[k] = ids[:0]
	}
	g.overflow = g.overflow[:0]
	g.all = g.all[:0]
}

// Insert places an entity into every cell its box covers.
func (g *Grid) Insert(id ecs.EntityID, b AABB) {
	g.all = append(g.all, id)
	r, ok := g.span(b)
	if !ok {
		g.overflow = append(g.overflow, id)
		return
	}
	for cx := r.x0; cx <= r.x1; cx++ {
		for cy := r.y0; cy <= r.y1; cy++ {
			k := cellKey{cx: cx, cy: cy}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

// Query returns every entity sharing a cell with b, plus the overflow list,
// once each, in ascending entity index order. A box that cannot be mapped
// to cells gets every inserted entity.
func (g *Grid) Query(b AABB) []ecs.EntityID {
	clear(g.seen)
	var result []ecs.EntityID
	add := func(ids []ecs.EntityID) {
		for _, id := range ids {
			if _, dup := g.seen[id]; dup {
				continue
			}
			g.seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	if r, ok := g.span(b); ok {
		for cx := r.x0; cx <= r.x1; cx++ {
			for cy := r.y0; cy <= r.y1; cy++ {
				add(g.cells[cellKey{cx: cx, cy: cy}])
			}
		}
		add(g.overflow)
	} else {
		add(g.all)
	}
	slices.SortFunc(result, func(a, b ecs.EntityID) int {
		return int(a.Index()) - int(b.Index())
	})
	return result
}
