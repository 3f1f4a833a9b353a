package physics

import "ironloop/internal/core/components"

// ShapeKind tags which variant a Shape currently holds — the tagged-union
// half of spec.md §9's recommended "tagged union + 2x2 dispatch table"
// design for the two shape variants this engine supports.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeRect
)

// Shape is a small tagged union of the two supported collider shapes.
// Only the fields for the active Kind are meaningful; this mirrors the
// teacher's single-struct-with-a-type-tag style (PhysicsComponent,
// TransformComponent) rather than an interface-per-shape, since there are
// exactly two variants and a dispatch table keyed by the pair of kinds is
// the specified design.
type Shape struct {
	Kind ShapeKind

	Radius float64 // meaningful when Kind == ShapeCircle

	HalfWidth  float64 // meaningful when Kind == ShapeRect
	HalfHeight float64 // meaningful when Kind == ShapeRect
}

// NewCircle builds a circle shape of the given radius.
func NewCircle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// NewRect builds a rect shape from full width/height.
func NewRect(width, height float64) Shape {
	return Shape{Kind: ShapeRect, HalfWidth: width / 2, HalfHeight: height / 2}
}

// boundingRadius returns a conservative bounding radius used by the
// broad-phase accelerator query, so a rect is never missed by a circular
// neighbor query.
func (s Shape) boundingRadius() float64 {
	switch s.Kind {
	case ShapeCircle:
		return s.Radius
	case ShapeRect:
		return components.Vector2{X: s.HalfWidth, Y: s.HalfHeight}.Length()
	default:
		return 0
	}
}
