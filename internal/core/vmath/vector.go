package vmath

import "math"

// Number is the set of scalar types a Vec2 can carry.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Vec2 is a 2D vector with value semantics.
type Vec2[T Number] struct {
	X T
	Y T
}

// Vec is the float64 vector used by all simulation geometry.
type Vec = Vec2[float64]

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec2[T]) Add(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X + o.X, v.Y + o.Y} }
func (v Vec2[T]) Sub(o Vec2[T]) Vec2[T] { return Vec2[T]{v.X - o.X, v.Y - o.Y} }
func (v Vec2[T]) Mul(s T) Vec2[T]       { return Vec2[T]{v.X * s, v.Y * s} }
func (v Vec2[T]) Div(s T) Vec2[T]       { return Vec2[T]{v.X / s, v.Y / s} }
func (v Vec2[T]) Neg() Vec2[T]          { return Vec2[T]{-v.X, -v.Y} }
func (v Vec2[T]) IsZero() bool          { return v.X == 0 && v.Y == 0 }

// LenSq returns the squared amplitude. Prefer it over Len for comparisons.
func (v Vec2[T]) LenSq() T { return v.X*v.X + v.Y*v.Y }

func (v Vec2[T]) Len() float64 { return math.Sqrt(float64(v.LenSq())) }

// Normalize returns the unit vector. A zero vector yields NaN components;
// callers that cannot rule that out should use TryNormalize.
func (v Vec2[T]) Normalize() Vec2[T] {
	l := v.Len()
	return Vec2[T]{T(float64(v.X) / l), T(float64(v.Y) / l)}
}

// TryNormalize is Normalize guarded against the zero vector.
func (v Vec2[T]) TryNormalize() (Vec2[T], bool) {
	if v.IsZero() {
		return v, false
	}
	return v.Normalize(), true
}

// Float widens any vector to the float64 form.
func (v Vec2[T]) Float() Vec { return Vec{float64(v.X), float64(v.Y)} }
