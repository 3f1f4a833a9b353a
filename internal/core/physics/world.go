package physics

import (
	"ironloop/internal/core/components"
	"ironloop/internal/core/ecs"
)

// World is spec.md §3's physics world: a packed []Collider plus a
// redirection table from handle index to packed slot, so removal is a
// swap-remove that patches exactly one table entry (spec.md §4.5's
// invariant: every live handle's table entry points to a slot whose
// Collider.Handle equals that handle). Bodies live in a parallel
// allocator/registry. A per-tick collisions map rounds out the type.
type World struct {
	handleAlloc *ecs.Allocator
	bodyAlloc   *ecs.Allocator

	colliders []Collider
	redirect  []int32 // Handle.Index -> slot in colliders, or -1

	bodies     map[ecs.Entity]*PhysicsBody
	collisions map[Handle][]Contact
}

const noSlot int32 = -1

// NewWorld creates an empty physics world.
func NewWorld() *World {
	return &World{
		handleAlloc: ecs.NewAllocator(),
		bodyAlloc:   ecs.NewAllocator(),
		bodies:      make(map[ecs.Entity]*PhysicsBody),
		collisions:  make(map[Handle][]Contact),
	}
}

func (w *World) growRedirect(n int) {
	if len(w.redirect) >= n {
		return
	}
	grown := make([]int32, n)
	for i := range grown {
		grown[i] = noSlot
	}
	copy(grown, w.redirect)
	w.redirect = grown
}

// AddCollider allocates a stable handle for c, sets it on the returned
// copy's Handle field, and inserts it into the packed array.
func (w *World) AddCollider(c Collider) Handle {
	h := w.handleAlloc.Allocate()
	c.Handle = h

	w.growRedirect(int(h.Index) + 1)
	slot := int32(len(w.colliders))
	w.colliders = append(w.colliders, c)
	w.redirect[h.Index] = slot
	return h
}

// RemoveCollider deletes h via swap-remove, patching the moved collider's
// redirection entry, and deallocates its handle.
func (w *World) RemoveCollider(h Handle) {
	if int(h.Index) >= len(w.redirect) {
		return
	}
	slot := w.redirect[h.Index]
	if slot == noSlot {
		return
	}

	last := int32(len(w.colliders) - 1)
	if slot != last {
		w.colliders[slot] = w.colliders[last]
		moved := w.colliders[slot].Handle
		w.redirect[moved.Index] = slot
	}
	w.colliders = w.colliders[:last]
	w.redirect[h.Index] = noSlot
	delete(w.collisions, h)
	_ = w.handleAlloc.Deallocate(h)
}

// GetCollider returns a copy of h's collider, or false if h is stale.
func (w *World) GetCollider(h Handle) (Collider, bool) {
	slot, ok := w.slotOf(h)
	if !ok {
		return Collider{}, false
	}
	return w.colliders[slot], true
}

// GetColliderMut returns a pointer to h's collider for in-place mutation.
func (w *World) GetColliderMut(h Handle) (*Collider, bool) {
	slot, ok := w.slotOf(h)
	if !ok {
		return nil, false
	}
	return &w.colliders[slot], true
}

func (w *World) slotOf(h Handle) (int32, bool) {
	if !w.handleAlloc.IsValid(h) {
		return 0, false
	}
	if int(h.Index) >= len(w.redirect) {
		return 0, false
	}
	slot := w.redirect[h.Index]
	if slot == noSlot {
		return 0, false
	}
	return slot, true
}

// GetColliderPairMut returns mutable pointers to h1 and h2's colliders.
// h1 and h2 must differ — spec.md §4.5 requires this for aliasing safety,
// since a single slice cannot yield two overlapping mutable references
// through the usual indexing rules; requesting h1 == h2 is a programmer
// error and panics.
func (w *World) GetColliderPairMut(h1, h2 Handle) (*Collider, *Collider, bool) {
	if h1 == h2 {
		ecs.Fatalf(ecs.ErrCodeInvalidHandle, "", ecs.Invalid, "GetColliderPairMut called with h1 == h2")
	}
	a, ok := w.GetColliderMut(h1)
	if !ok {
		return nil, nil, false
	}
	b, ok := w.GetColliderMut(h2)
	if !ok {
		return nil, nil, false
	}
	return a, b, true
}

// NewPhysicsBody registers an empty body for owner and returns it.
func (w *World) NewPhysicsBody(owner ecs.Entity) *PhysicsBody {
	body := &PhysicsBody{Owner: owner}
	w.bodies[owner] = body
	return body
}

// NewPhysicsBodyWithRigidbody registers a body for owner with one rigidbody
// collider already attached (shape + phys at the given local offset).
func (w *World) NewPhysicsBodyWithRigidbody(owner ecs.Entity, shape Shape, offset components.Vector2, layer int, phys PhysData) (*PhysicsBody, Handle) {
	body := w.NewPhysicsBody(owner)
	h := w.AddCollider(Collider{
		Owner:  owner,
		Shape:  shape,
		Offset: offset,
		Layer:  layer,
		Phys:   &phys,
	})
	body.Colliders = append(body.Colliders, h)
	return body, h
}

// ClonePhysicsBody deep-copies src's owned colliders (new stable handles,
// same shape/offset/layer/phys data) onto a fresh body for newOwner.
func (w *World) ClonePhysicsBody(src *PhysicsBody, newOwner ecs.Entity) *PhysicsBody {
	clone := w.NewPhysicsBody(newOwner)
	for _, h := range src.Colliders {
		c, ok := w.GetCollider(h)
		if !ok {
			continue
		}
		var phys *PhysData
		if c.Phys != nil {
			copied := *c.Phys
			phys = &copied
		}
		newHandle := w.AddCollider(Collider{
			Owner:    newOwner,
			Shape:    c.Shape,
			Offset:   c.Offset,
			Position: c.Position,
			Layer:    c.Layer,
			IsStatic: c.IsStatic,
			Phys:     phys,
		})
		clone.Colliders = append(clone.Colliders, newHandle)
	}
	return clone
}

// GetCollisions returns this tick's contact list for h.
func (w *World) GetCollisions(h Handle) []Contact {
	return w.collisions[h]
}

// recordCollision appends c to h's per-tick contact list — called by the
// driver's detect phase once for each of the contact's two colliders.
func (w *World) recordCollision(h Handle, c Contact) {
	w.collisions[h] = append(w.collisions[h], c)
}

// ClearCollisions empties every collider's per-tick contact list without
// touching the packed array or redirection table.
func (w *World) ClearCollisions() {
	for k := range w.collisions {
		delete(w.collisions, k)
	}
	for i := range w.colliders {
		w.colliders[i].CollidingWith = w.colliders[i].CollidingWith[:0]
	}
}

// ClearAll removes every collider and body, resetting the world to empty.
func (w *World) ClearAll() {
	w.colliders = nil
	w.redirect = nil
	w.bodies = make(map[ecs.Entity]*PhysicsBody)
	w.collisions = make(map[Handle][]Contact)
	w.handleAlloc = ecs.NewAllocator()
	w.bodyAlloc = ecs.NewAllocator()
}

// Colliders exposes a read-only view of the packed array for the driver's
// prepare/detect passes.
func (w *World) Colliders() []Collider {
	return w.colliders
}

// MutateColliders calls fn once per packed collider with a pointer into
// the live backing array, for the driver's prepare phase (which needs to
// write Position and clear CollidingWith in place without going through
// the handle/redirection lookup for every collider).
func (w *World) MutateColliders(fn func(c *Collider)) {
	for i := range w.colliders {
		fn(&w.colliders[i])
	}
}
