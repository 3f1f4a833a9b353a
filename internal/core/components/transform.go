package components

// Transform is the spec's "spatial transform component (external)":
// position, velocity, and the frame's starting position snapshot the
// physics driver's prepare phase records before moving colliders. Adapted
// from the teacher's TransformComponent, trimmed to the fields the physics
// pipeline actually reads and writes — the teacher's parent/child hierarchy
// and dirty-flag matrix cache are gameplay/rendering concerns with no named
// operation in the spec, so they are not carried (see DESIGN.md).
type Transform struct {
	Position Vector2 `json:"position"`
	Velocity Vector2 `json:"velocity"`

	// FrameStartingPos is set by physics.Driver's prepare phase to the
	// position observed at the start of the tick, before any collider is
	// moved to track it. It exists purely for that handoff and should not
	// be written by gameplay code.
	FrameStartingPos Vector2 `json:"frameStartingPos"`
}

// NewTransform creates a transform at the given position with zero
// velocity, matching the teacher's NewTransformComponent default pattern.
func NewTransform(position Vector2) Transform {
	return Transform{Position: position}
}
