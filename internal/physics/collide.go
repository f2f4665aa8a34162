package physics

import (
	"math"

	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/vmath"
)

// ContactSlop is the deepest overlap still treated as mere touching. It
// absorbs the rounding left over after a body was moved by its MTV.
const ContactSlop = 1e-9

// Collide is the narrow-phase test between two shapes centred at p1 and p2.
// When they overlap it returns the minimum translation vector to add to
// the first body's position to separate it from the second.
func Collide(s1, s2 component.Shape, p1, p2 vmath.Vec) (vmath.Vec, bool) {
	switch s1.Kind {
	case component.ShapeCircle:
		switch s2.Kind {
		case component.ShapeCircle:
			return circleCircle(s1.Radius, s2.Radius, p1, p2)
		case component.ShapeRect:
			mtv, ok := rectCircle(s2.Width, s2.Height, s1.Radius, p2, p1)
			return mtv.Neg(), ok
		}
	case component.ShapeRect:
		switch s2.Kind {
		case component.ShapeRect:
			return rectRect(s1.Width, s1.Height, s2.Width, s2.Height, p1, p2)
		case component.ShapeCircle:
			return rectCircle(s1.Width, s1.Height, s2.Radius, p1, p2)
		}
	}
	return vmath.Vec{}, false
}

func circleCircle(r1, r2 float64, p1, p2 vmath.Vec) (vmath.Vec, bool) {
	line := p2.Sub(p1)
	dist2 := line.LenSq()
	rad := r1 + r2
	if rad*rad <= dist2 {
		return vmath.Vec{}, false
	}
	depth := rad - math.Sqrt(dist2)
	if depth <= ContactSlop {
		return vmath.Vec{}, false
	}
	// concentric circles have no separating direction
	n, ok := line.TryNormalize()
	if !ok {
		return vmath.Vec{}, false
	}
	return n.Mul(depth).Neg(), true
}

type box struct {
	minX, maxX, minY, maxY float64
}

func boxAt(p vmath.Vec, w, h float64) box {
	return box{minX: p.X - w/2, maxX: p.X + w/2, minY: p.Y - h/2, maxY: p.Y + h/2}
}

func (b box) corners() [4]vmath.Vec {
	return [4]vmath.Vec{
		{X: b.minX, Y: b.minY},
		{X: b.minX, Y: b.maxY},
		{X: b.maxX, Y: b.minY},
		{X: b.maxX, Y: b.maxY},
	}
}

func (b box) contains(p vmath.Vec) bool {
	return b.minX <= p.X && p.X <= b.maxX && b.minY <= p.Y && p.Y <= b.maxY
}

// penetration returns the signed distance from a corner to the nearest x
// and y edge of b.
func (b box) penetration(c vmath.Vec) (float64, float64) {
	return minAbs(c.X-b.minX, c.X-b.maxX), minAbs(c.Y-b.minY, c.Y-b.maxY)
}

func minAbs(a, b float64) float64 {
	if math.Abs(a) < math.Abs(b) {
		return a
	}
	return b
}

// cornerPush picks the axis to resolve a corner on: x unless the x
// penetration is zero or the y penetration is smaller.
func cornerPush(vx, vy float64) vmath.Vec {
	if vy == 0 || vx != 0 && math.Abs(vx) < math.Abs(vy) {
		return vmath.V(vx, 0)
	}
	return vmath.V(0, vy)
}

func rectRect(w1, h1, w2, h2 float64, p1, p2 vmath.Vec) (vmath.Vec, bool) {
	ox := (w1+w2)/2 - math.Abs(p2.X-p1.X)
	oy := (h1+h2)/2 - math.Abs(p2.Y-p1.Y)
	if ox <= ContactSlop || oy <= ContactSlop {
		return vmath.Vec{}, false
	}

	b1 := boxAt(p1, w1, h1)
	b2 := boxAt(p2, w2, h2)

	// corners of the first box inside the second push the first box back out
	for _, c := range b1.corners() {
		if !b2.contains(c) {
			continue
		}
		if push := cornerPush(b2.penetration(c)).Neg(); !push.IsZero() {
			return push, true
		}
	}
	// otherwise the second box pokes into the first: same rule, opposite sign
	for _, c := range b2.corners() {
		if !b1.contains(c) {
			continue
		}
		if push := cornerPush(b1.penetration(c)); !push.IsZero() {
			return push, true
		}
	}

	// crossed boxes: no corner inside either one, use the shallow axis
	if ox < oy {
		return vmath.V(ox*side(p1.X-p2.X), 0), true
	}
	return vmath.V(0, oy*side(p1.Y-p2.Y)), true
}

func side(d float64) float64 {
	if d < 0 {
		return -1
	}
	return 1
}

// rectCircle returns the MTV for the box centred at pb against the circle
// centred at pc. A corner inside the circle pushes the box along
// corner-pc; so does the nearest face point when the circle meets a face.
func rectCircle(w, h, r float64, pb, pc vmath.Vec) (vmath.Vec, bool) {
	b := boxAt(pb, w, h)
	closest := vmath.V(clamp(pc.X, b.minX, b.maxX), clamp(pc.Y, b.minY, b.maxY))

	dir := closest.Sub(pc)
	if !dir.IsZero() {
		d2 := dir.LenSq()
		if d2 >= r*r {
			return vmath.Vec{}, false
		}
		dist := math.Sqrt(d2)
		depth := r - dist
		if depth <= ContactSlop {
			return vmath.Vec{}, false
		}
		return dir.Div(dist).Mul(depth), true
	}

	// circle centre inside the box: move the box off the nearest edge
	left := pc.X - b.minX
	right := b.maxX - pc.X
	bottom := pc.Y - b.minY
	top := b.maxY - pc.Y
	switch m := math.Min(math.Min(left, right), math.Min(bottom, top)); m {
	case left:
		return vmath.V(left+r, 0), true
	case right:
		return vmath.V(-(right + r), 0), true
	case bottom:
		return vmath.V(0, bottom+r), true
	default:
		return vmath.V(0, -(top + r)), true
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
