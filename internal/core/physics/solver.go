package physics

import (
	"math"

	"ironloop/internal/core/components"
	"ironloop/internal/core/config"
	"ironloop/internal/core/ecs"
)

// RigidbodyState is the solver's per-rigidbody working copy for one step —
// the driver's prepare phase snapshots {entity, collider, phys_data,
// position, offset, velocity} into one of these per rigidbody collider
// (spec.md §4.8 step 1), and Solve mutates Position/Velocity in place.
type RigidbodyState struct {
	Entity   ecs.Entity
	Collider Handle
	Phys     PhysData
	Offset   components.Vector2
	Position components.Vector2
	Velocity components.Vector2
}

// Solve applies spec.md §4.7's impulse resolution and positional
// correction for one contact between rigidbodies a and b, mutating their
// Position/Velocity in place. It is a no-op if both bodies have zero
// inverse mass (two static/kinematic bodies should never reach here, but
// the check is kept per spec's "skip if both infinite mass" rule).
//
// Preserves two deliberate deviations from a physically "correct" solver,
// both recorded as open questions in spec.md §9 and replicated here
// verbatim rather than fixed:
//   - the tangent-impulse denominator is the PRODUCT of inverse masses,
//     not their sum;
//   - static friction is combined by arithmetic mean, not
//     sqrt(a^2+b^2).
func Solve(a, b *RigidbodyState, contact Contact, settings config.Settings) {
	checkFinite := func() {
		if !settings.DebugLogging {
			return
		}
		for _, s := range []*RigidbodyState{a, b} {
			if !s.Velocity.IsFinite() || !s.Position.IsFinite() {
				panic("physics: non-finite velocity or position in Solve")
			}
		}
	}
	checkFinite()
	defer checkFinite()

	invMassSum := a.Phys.InvMass + b.Phys.InvMass
	if invMassSum == 0 {
		return
	}
	n := contact.Normal

	relVel := b.Velocity.Sub(a.Velocity)
	vn := relVel.Dot(n)
	if vn <= 0 {
		e := math.Min(a.Phys.Restitution, b.Phys.Restitution)
		j := -(1 + e) * vn / invMassSum

		a.Velocity = a.Velocity.Sub(n.Scale(a.Phys.InvMass * j))
		b.Velocity = b.Velocity.Add(n.Scale(b.Phys.InvMass * j))

		applyFriction(a, b, n, j, settings)
	}

	correctPositions(a, b, contact, invMassSum, settings)
}

func applyFriction(a, b *RigidbodyState, n components.Vector2, j float64, settings config.Settings) {
	relVel := b.Velocity.Sub(a.Velocity)
	tangent := relVel.Sub(n.Scale(relVel.Dot(n)))
	tangent = tangent.Normalize()
	if tangent == (components.Vector2{}) {
		return
	}

	// Open question (spec.md §9): denominator is the PRODUCT of inverse
	// masses, preserved verbatim rather than replaced with the physically
	// conventional sum.
	denom := a.Phys.InvMass * b.Phys.InvMass
	if denom == 0 {
		return
	}
	jt := -relVel.Dot(tangent) / denom

	// Open question (spec.md §9): static friction combined by arithmetic
	// mean, preserved verbatim rather than sqrt(a^2+b^2).
	staticMu := (a.Phys.StaticFriction + b.Phys.StaticFriction) / 2

	var frictionImpulse components.Vector2
	if absF(jt) < j*staticMu {
		frictionImpulse = tangent.Scale(jt)
	} else {
		dynMu := (a.Phys.DynFriction + b.Phys.DynFriction) / 2
		frictionImpulse = tangent.Scale(-(j * dynMu))
	}

	a.Velocity = a.Velocity.Sub(frictionImpulse.Scale(a.Phys.InvMass))
	b.Velocity = b.Velocity.Add(frictionImpulse.Scale(b.Phys.InvMass))
}

func correctPositions(a, b *RigidbodyState, contact Contact, invMassSum float64, settings config.Settings) {
	penetration := contact.Penetration - settings.Slop
	if penetration <= 0 || invMassSum == 0 {
		return
	}
	magnitude := penetration / invMassSum * settings.CorrectionPercent
	correction := contact.Normal.Scale(magnitude)

	a.Position = a.Position.Sub(correction.Scale(a.Phys.InvMass))
	b.Position = b.Position.Add(correction.Scale(b.Phys.InvMass))
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
