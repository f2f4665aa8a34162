package component

import "fmt"

// ShapeKind tags the variant held by a Shape.
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeCircle
	ShapeRect
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRect:
		return "rect"
	default:
		return "none"
	}
}

// Shape is a closed sum type: Circle(radius) | Rect(width, height) | None.
// The zero value is None. Width and height are full extents, centred on the
// owning transform's position.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Width  float64
	Height float64
}

func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

func Rect(width, height float64) Shape {
	return Shape{Kind: ShapeRect, Width: width, Height: height}
}

func (s Shape) String() string {
	switch s.Kind {
	case ShapeCircle:
		return fmt.Sprintf("circle(r=%g)", s.Radius)
	case ShapeRect:
		return fmt.Sprintf("rect(%gx%g)", s.Width, s.Height)
	default:
		return "none"
	}
}

// ParseShapeKind maps scene/config names onto a kind. Unknown names are None.
func ParseShapeKind(name string) ShapeKind {
	switch name {
	case "circle":
		return ShapeCircle
	case "rect", "box":
		return ShapeRect
	default:
		return ShapeNone
	}
}
