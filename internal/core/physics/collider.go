package physics

import (
	"ironloop/internal/core/components"
	"ironloop/internal/core/ecs"
)

// PhysData is a collider's optional mass/material data — its presence is
// what makes a collider a *rigidbody* (spec.md §3: "at most one collider
// per body carries phys_data").
type PhysData struct {
	InvMass        float64
	Restitution    float64
	StaticFriction float64
	DynFriction    float64
}

// IsRigidbody reports whether the collider owning this data participates
// in impulse resolution (it always does, if non-nil) — kept as a method for
// symmetry with the teacher's PhysicsComponent predicate style.
func (p *PhysData) IsRigidbody() bool { return p != nil }

// Collider is spec.md §3's collider record: shape + local offset + current
// world position + layer + static flag + owning entity + stable handle +
// optional rigidbody data + the per-tick list of entities colliding with
// it.
type Collider struct {
	Handle Handle
	Owner  ecs.Entity

	Shape    Shape
	Offset   components.Vector2
	Position components.Vector2
	Layer    int
	IsStatic bool

	Phys *PhysData

	// CollidingWith is populated fresh every tick by the driver's detect
	// phase and cleared during prepare.
	CollidingWith []Handle
}

// PhysicsBody is spec.md §3's "small set of collider handles owned by an
// entity". At most one member should carry Phys (the rigidbody); the rest
// are triggers/queries.
type PhysicsBody struct {
	Owner     ecs.Entity
	Colliders []Handle
}

// RigidbodyCollider returns the handle of the one collider in the body that
// carries PhysData, or (zero, false) if the body has no rigidbody
// collider. A body is expected to carry at most one; if more than one does
// (caller misuse), the first encountered is returned.
func (b *PhysicsBody) RigidbodyCollider(w *World) (Handle, bool) {
	for _, h := range b.Colliders {
		if c, ok := w.GetCollider(h); ok && c.Phys != nil {
			return h, true
		}
	}
	return Handle{}, false
}
