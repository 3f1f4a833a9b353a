package physics

import (
	"log/slog"

	"ironloop/internal/core/components"
	"ironloop/internal/core/config"
	"ironloop/internal/core/ecs"
	"ironloop/internal/core/ecs/world"
	"ironloop/internal/core/log"
)

// Metrics is the driver's per-tick counter struct, in the teacher's plain
// counter-struct style (PerformanceMetrics/SystemMetrics) rather than an
// external metrics library — no repo in the retrieval pack wires a metrics
// library into gameplay-facing code (aistore's prometheus/client_golang is
// server-side only), so this stays a struct the caller can read and, if it
// wants, forward into its own telemetry.
type Metrics struct {
	CandidatesConsidered int
	TestsAttempted       int
	Contacts             int
	Solved               int
}

// Driver orchestrates one physics step over the ECS (C10): prepare, detect,
// solve, writeback, exactly as spec.md §4.8 lists them.
type Driver struct {
	Settings config.Settings
	Accel    *Grid
	Detector *Detector
	Sink     EventSink

	Metrics Metrics
}

// NewDriver creates a driver over accel using settings' layer matrix for
// narrow-phase gating and a NoopSink until the caller wires one.
func NewDriver(settings config.Settings, accel *Grid) *Driver {
	if settings.DebugLogging {
		log.SetLevel(slog.LevelDebug)
	}
	return &Driver{
		Settings: settings,
		Accel:    accel,
		Detector: NewDetector(settings.Layers),
		Sink:     NoopSink{},
	}
}

// Step runs one full physics tick: prepare, detect, solve, writeback.
// Detection and solving never retry (spec.md §4.8's failure semantics); a
// missing neighbor list is simply an empty candidate set.
func (d *Driver) Step(ecsWorld *world.World, physWorld *World) {
	bodies := d.prepare(ecsWorld, physWorld)
	contacts := d.detect(physWorld)
	solved := d.solve(bodies, contacts)
	d.writeback(ecsWorld, bodies)

	d.Metrics = Metrics{
		CandidatesConsidered: d.Metrics.CandidatesConsidered,
		TestsAttempted:       d.Detector.TestsAttempted,
		Contacts:             len(contacts),
		Solved:               solved,
	}
	if d.Settings.DebugLogging {
		log.Step(d.Settings.FixedTimestep, d.Metrics.CandidatesConsidered, d.Metrics.Contacts, d.Metrics.Solved)
	}
}

// prepare implements spec.md §4.8 step 1: for every collider, read its
// entity's transform, snapshot frame_starting_pos, move the collider to
// transform.pos+offset, clear its per-tick list, and rebuild the
// accelerator index. Rigidbody colliders additionally get a
// RigidbodyState snapshot keyed by collider handle.
func (d *Driver) prepare(ecsWorld *world.World, physWorld *World) map[Handle]*RigidbodyState {
	physWorld.ClearCollisions()
	d.Accel.Clear()

	bodies := make(map[Handle]*RigidbodyState)

	physWorld.MutateColliders(func(c *Collider) {
		transform, ok := world.GetComponentMut[components.Transform](ecsWorld, c.Owner)
		if !ok {
			// A collider whose owning entity lost its transform mid-life is a
			// stale-reference programmer error, not a recoverable runtime state.
			ecs.Fatalf(ecs.ErrCodeComponentNotFound, "components.Transform", c.Owner,
				"collider %+v references entity with no Transform", c.Handle)
		}

		transform.FrameStartingPos = transform.Position
		c.Position = transform.Position.Add(c.Offset)
		c.CollidingWith = c.CollidingWith[:0]

		d.Accel.Add(c.Handle, c.Position)

		if c.Phys != nil {
			velocity := transform.Velocity
			if !c.IsStatic {
				gravity := components.Vector2{X: d.Settings.Gravity.X, Y: d.Settings.Gravity.Y}
				velocity = velocity.Add(gravity.Scale(d.Settings.FixedTimestep))
			}
			bodies[c.Handle] = &RigidbodyState{
				Entity:   c.Owner,
				Collider: c.Handle,
				Phys:     *c.Phys,
				Offset:   c.Offset,
				Position: c.Position,
				Velocity: velocity,
			}
		}
	})

	return bodies
}

// detect implements spec.md §4.8 step 2: for every non-static collider,
// query the accelerator for neighbor candidates, run the narrow phase on
// each, populate colliding_with lists, raise CollisionHappened, and
// accumulate the contact list.
func (d *Driver) detect(physWorld *World) []Contact {
	d.Detector.Reset()
	d.Metrics.CandidatesConsidered = 0
	var contacts []Contact
	var neighbours []Handle

	// The grid indexes colliders by centre, so the query must reach as far
	// as the largest collider's bounding radius beyond a's own.
	maxRadius := 0.0
	for _, c := range physWorld.Colliders() {
		if r := c.Shape.boundingRadius(); r > maxRadius {
			maxRadius = r
		}
	}

	for _, a := range physWorld.Colliders() {
		if a.IsStatic {
			continue
		}

		extent := a.Shape.boundingRadius() + maxRadius
		neighbours = neighbours[:0]
		d.Accel.GetNeighbours(a.Position, extent, &neighbours)
		d.Metrics.CandidatesConsidered += len(neighbours)

		for _, bh := range neighbours {
			b, ok := physWorld.GetCollider(bh)
			if !ok || b.Handle == a.Handle {
				continue
			}

			contact, hit := d.Detector.Test(a, b)
			if !hit {
				continue
			}
			contacts = append(contacts, contact)

			if ac, ok := physWorld.GetColliderMut(a.Handle); ok {
				ac.CollidingWith = append(ac.CollidingWith, b.Handle)
			}
			if bc, ok := physWorld.GetColliderMut(b.Handle); ok {
				bc.CollidingWith = append(bc.CollidingWith, a.Handle)
			}
			physWorld.recordCollision(a.Handle, contact)
			physWorld.recordCollision(b.Handle, contact)

			d.Sink.Publish(CollisionHappened{A: a, B: b, Contact: contact})
		}
	}

	return contacts
}

// solve implements spec.md §4.8 step 3: filter contacts to rigidbody pairs
// and apply §4.7 to each, in detection order.
func (d *Driver) solve(bodies map[Handle]*RigidbodyState, contacts []Contact) int {
	solved := 0
	for _, contact := range contacts {
		a, aOK := bodies[contact.A]
		b, bOK := bodies[contact.B]
		if !aOK || !bOK {
			continue
		}
		Solve(a, b, contact, d.Settings)
		solved++
	}
	return solved
}

// writeback implements spec.md §4.8 step 4: every rigidbody snapshotted in
// prepare, whether or not it was part of a solved contact, writes its
// position (minus its collider's local offset) and velocity, including the
// gravity added in prepare, back through the ECS. A stale
// entity encountered here is a programmer error, not a recoverable state.
func (d *Driver) writeback(ecsWorld *world.World, bodies map[Handle]*RigidbodyState) {
	for _, body := range bodies {
		transform, ok := world.GetComponentMut[components.Transform](ecsWorld, body.Entity)
		if !ok {
			ecs.Fatalf(ecs.ErrCodeComponentNotFound, "components.Transform", body.Entity,
				"writeback found no Transform for entity that had one during prepare")
		}
		transform.Position = body.Position.Sub(body.Offset)
		transform.Velocity = body.Velocity
	}
}
