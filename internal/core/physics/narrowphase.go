package physics

import (
	"math"

	"ironloop/internal/core/components"
	"ironloop/internal/core/config"
)

// Contact is spec.md §3's contact/collision info: the pair of colliders,
// a non-negative penetration depth, and a unit normal pointing from A to B.
type Contact struct {
	A, B        Handle
	Penetration float64
	Normal      components.Vector2
}

// contactEpsilon is the co-located-circle degenerate threshold from
// spec.md §4.6.
const contactEpsilon = 1e-9

// Detector runs the narrow phase: layer-matrix-gated, once-per-pair-per-tick
// shape dispatch, keyed by a [2]ShapeKind table per spec.md §9's
// recommended tagged-union-plus-dispatch-table shape.
type Detector struct {
	Layers config.LayerMatrix

	// TestsAttempted is spec.md §4.6's debug counter: incremented once per
	// test attempted, regardless of whether it produced a contact.
	TestsAttempted int

	tested map[pairKey]struct{}
}

type pairKey struct{ lo, hi Handle }

func keyFor(a, b Handle) pairKey {
	if handleLess(a, b) {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

func handleLess(a, b Handle) bool {
	if a.Index != b.Index {
		return a.Index < b.Index
	}
	return a.Generation < b.Generation
}

// NewDetector creates a detector consulting the given layer matrix. A nil
// matrix permits every layer pair.
func NewDetector(layers config.LayerMatrix) *Detector {
	return &Detector{Layers: layers, tested: make(map[pairKey]struct{})}
}

// Reset clears the per-tick tested-pair set and test counter; called once
// per step by the driver before the detect phase.
func (d *Detector) Reset() {
	d.TestsAttempted = 0
	for k := range d.tested {
		delete(d.tested, k)
	}
}

// Test runs narrow phase on an ordered pair (a non-static, distinct from
// b, layer-permitted, not yet tested this tick). It returns the contact
// and true on a hit, or false on a miss or a skip (already tested, layer
// forbidden, or same entity).
func (d *Detector) Test(a, b Collider) (Contact, bool) {
	if a.Owner == b.Owner {
		return Contact{}, false
	}
	if d.Layers != nil && !d.Layers.Allows(a.Layer, b.Layer) {
		return Contact{}, false
	}
	key := keyFor(a.Handle, b.Handle)
	if _, seen := d.tested[key]; seen {
		return Contact{}, false
	}
	d.tested[key] = struct{}{}
	d.TestsAttempted++

	fn := dispatch[[2]ShapeKind{a.Shape.Kind, b.Shape.Kind}]
	if fn == nil {
		return Contact{}, false
	}
	contact, hit := fn(a, b)
	if !hit {
		return Contact{}, false
	}
	contact.A, contact.B = a.Handle, b.Handle
	return contact, true
}

// dispatch is the 2x2 function-pointer table keyed by (a.Kind, b.Kind),
// the shape spec.md §9 recommends for the two-shape-variant case.
var dispatch = map[[2]ShapeKind]func(a, b Collider) (Contact, bool){
	{ShapeCircle, ShapeCircle}: circleCircle,
	{ShapeRect, ShapeRect}:     rectRect,
	{ShapeCircle, ShapeRect}:   circleRect,
	{ShapeRect, ShapeCircle}:   rectCircle,
}

// circleCircle implements spec.md §4.6's circle-circle test.
func circleCircle(a, b Collider) (Contact, bool) {
	d := b.Position.Sub(a.Position)
	r := a.Shape.Radius + b.Shape.Radius
	distSq := d.LengthSquared()
	if distSq > r*r {
		return Contact{}, false
	}
	dist := math.Sqrt(distSq)
	if dist > contactEpsilon {
		return Contact{Normal: d.Scale(1 / dist), Penetration: r - dist}, true
	}
	return Contact{Normal: components.Vector2{X: 1, Y: 0}, Penetration: a.Shape.Radius}, true
}

// rectRect implements spec.md §4.6's AABB separating-axis test: overlap on
// X then Y using half-extents, picking the axis of least overlap.
func rectRect(a, b Collider) (Contact, bool) {
	delta := b.Position.Sub(a.Position)
	overlapX := (a.Shape.HalfWidth + b.Shape.HalfWidth) - math.Abs(delta.X)
	if overlapX <= 0 {
		return Contact{}, false
	}
	overlapY := (a.Shape.HalfHeight + b.Shape.HalfHeight) - math.Abs(delta.Y)
	if overlapY <= 0 {
		return Contact{}, false
	}

	if overlapX < overlapY {
		normal := components.Vector2{X: 1, Y: 0}
		if delta.X < 0 {
			normal.X = -1
		}
		return Contact{Normal: normal, Penetration: overlapX}, true
	}
	normal := components.Vector2{X: 0, Y: 1}
	if delta.Y < 0 {
		normal.Y = -1
	}
	return Contact{Normal: normal, Penetration: overlapY}, true
}

// circleRect implements spec.md §4.6's circle-rect test: clamp the
// circle-to-rect delta to the rect's half-extents to find the closest
// point; if the circle's center is inside the rect, push to the nearest
// face along the dominant axis instead.
func circleRect(circle, rect Collider) (Contact, bool) {
	d := circle.Position.Sub(rect.Position)
	closest := components.Vector2{
		X: clamp(d.X, -rect.Shape.HalfWidth, rect.Shape.HalfWidth),
		Y: clamp(d.Y, -rect.Shape.HalfHeight, rect.Shape.HalfHeight),
	}

	inside := closest == d
	if inside {
		closest = nearestFace(d, rect.Shape.HalfWidth, rect.Shape.HalfHeight)
	}

	diff := d.Sub(closest)
	if inside {
		diff = diff.Scale(-1)
	}

	distSq := diff.LengthSquared()
	if distSq > circle.Shape.Radius*circle.Shape.Radius && !inside {
		return Contact{}, false
	}

	dist := math.Sqrt(distSq)
	var normal components.Vector2
	if dist > contactEpsilon {
		normal = diff.Scale(1 / dist)
	} else {
		normal = components.Vector2{X: 1, Y: 0}
	}
	penetration := circle.Shape.Radius - dist
	if inside {
		// The centre must travel dist to reach the face, plus the radius.
		penetration = circle.Shape.Radius + dist
	}
	return Contact{Normal: normal, Penetration: penetration}, true
}

// rectCircle implements spec.md §4.6's rect-circle test: identical to
// circle-rect with arguments swapped, but the returned contact is from the
// rect's perspective (normal pointing from rect toward circle, i.e. A=rect
// to B=circle), so the normal from circleRect (computed a to b = rect to
// circle there) must be negated since circleRect treats circle as "a".
func rectCircle(rect, circle Collider) (Contact, bool) {
	contact, hit := circleRect(circle, rect)
	if !hit {
		return Contact{}, false
	}
	contact.Normal = contact.Normal.Scale(-1)
	return contact, true
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

// nearestFace returns the point on the rect's boundary (half-extents hw,
// hh) nearest to interior point d, snapping along the dominant axis of d
// itself — |d.X| > |d.Y| picks the X face, otherwise the Y face. This
// compares the raw offset components directly rather than each axis's
// distance-to-edge, matching the original engine's detect_circle_rect.
func nearestFace(d components.Vector2, hw, hh float64) components.Vector2 {
	face := d
	if math.Abs(d.X) > math.Abs(d.Y) {
		if d.X > 0 {
			face.X = hw
		} else {
			face.X = -hw
		}
	} else {
		if d.Y > 0 {
			face.Y = hh
		} else {
			face.Y = -hh
		}
	}
	return face
}
