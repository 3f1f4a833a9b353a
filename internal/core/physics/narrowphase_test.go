package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironloop/internal/core/components"
	"ironloop/internal/core/ecs"
)

func ecsEntity(index uint32) ecs.Entity {
	return ecs.Entity{Index: index, Generation: 1}
}

func circleCollider(h Handle, pos components.Vector2, radius float64) Collider {
	return Collider{Handle: h, Shape: NewCircle(radius), Position: pos}
}

func rectCollider(h Handle, pos components.Vector2, w, hgt float64) Collider {
	return Collider{Handle: h, Shape: NewRect(w, hgt), Position: pos}
}

func Test_CircleCircle_ContactNormalAndPenetration(t *testing.T) {
	// S4 (circle-circle contact).
	a := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 0, Y: 0}, 1)
	b := circleCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 1.5, Y: 0}, 1)

	contact, hit := circleCircle(a, b)
	require.True(t, hit)
	assert.InDelta(t, 1.0, contact.Normal.X, 1e-9)
	assert.InDelta(t, 0.0, contact.Normal.Y, 1e-9)
	assert.InDelta(t, 0.5, contact.Penetration, 1e-9)
}

func Test_CircleCircle_CoLocatedUsesArbitraryNormal(t *testing.T) {
	a := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 5, Y: 5}, 2)
	b := circleCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 5, Y: 5}, 2)

	contact, hit := circleCircle(a, b)
	require.True(t, hit)
	assert.Equal(t, components.Vector2{X: 1, Y: 0}, contact.Normal)
	assert.Equal(t, 2.0, contact.Penetration)
}

func Test_CircleCircle_Miss(t *testing.T) {
	a := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 0, Y: 0}, 1)
	b := circleCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 10, Y: 0}, 1)

	_, hit := circleCircle(a, b)
	assert.False(t, hit)
}

func Test_RectRect_PicksAxisOfLeastOverlap(t *testing.T) {
	// S5 (rect-rect axis selection).
	a := rectCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 0, Y: 0}, 2, 2)
	b := rectCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 1.5, Y: 1.0}, 2, 2)

	contact, hit := rectRect(a, b)
	require.True(t, hit)
	assert.Equal(t, components.Vector2{X: 1, Y: 0}, contact.Normal)
	assert.InDelta(t, 0.5, contact.Penetration, 1e-9)
}

func Test_RectRect_Miss(t *testing.T) {
	a := rectCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 0, Y: 0}, 2, 2)
	b := rectCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 10, Y: 10}, 2, 2)

	_, hit := rectRect(a, b)
	assert.False(t, hit)
}

func Test_CircleRect_CenterOutsideRect(t *testing.T) {
	circle := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 3, Y: 0}, 1)
	rect := rectCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 0, Y: 0}, 4, 4)

	contact, hit := circleRect(circle, rect)
	require.True(t, hit)
	assert.Greater(t, contact.Penetration, 0.0)
}

func Test_CircleRect_CenterInsideRect(t *testing.T) {
	circle := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 0.5, Y: 0}, 1)
	rect := rectCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 0, Y: 0}, 4, 4)

	contact, hit := circleRect(circle, rect)
	require.True(t, hit)
	assert.GreaterOrEqual(t, contact.Penetration, 0.0)
}

func Test_CircleRect_CenterInsideNonSquareRectUsesDominantComponent(t *testing.T) {
	// hw=10, hh=1; offset (9, 0.99) is closer to the Y face by raw
	// distance-to-edge (0.01 vs 1), but the dominant-component rule (as the
	// original engine's detect_circle_rect does it) picks X since
	// |d.X| > |d.Y|.
	circle := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 9, Y: 0.99}, 0.5)
	rect := rectCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 0, Y: 0}, 20, 2)

	contact, hit := circleRect(circle, rect)
	require.True(t, hit)
	assert.InDelta(t, 1.0, contact.Normal.X, 1e-9)
	assert.InDelta(t, 0.0, contact.Normal.Y, 1e-9)
}

func Test_RectCircle_NormalIsNegatedCircleRect(t *testing.T) {
	circle := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 3, Y: 0}, 1)
	rect := rectCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 0, Y: 0}, 4, 4)

	fromCircle, hit1 := circleRect(circle, rect)
	fromRect, hit2 := rectCircle(rect, circle)

	require.True(t, hit1)
	require.True(t, hit2)
	assert.InDelta(t, -fromCircle.Normal.X, fromRect.Normal.X, 1e-9)
	assert.InDelta(t, -fromCircle.Normal.Y, fromRect.Normal.Y, 1e-9)
	assert.InDelta(t, fromCircle.Penetration, fromRect.Penetration, 1e-9)
}

func Test_Detector_SkipsSameEntityAndRetest(t *testing.T) {
	d := NewDetector(nil)
	entity := ecsEntity(1)
	a := circleCollider(Handle{Index: 1, Generation: 1}, components.Vector2{X: 0, Y: 0}, 1)
	a.Owner = entity
	b := circleCollider(Handle{Index: 2, Generation: 1}, components.Vector2{X: 0.5, Y: 0}, 1)
	b.Owner = entity

	_, hit := d.Test(a, b)
	assert.False(t, hit, "same-owner colliders must never be tested")

	b.Owner = ecsEntity(2)
	_, hit = d.Test(a, b)
	assert.True(t, hit)
	assert.Equal(t, 1, d.TestsAttempted)

	_, hit = d.Test(b, a)
	assert.False(t, hit, "reordered pair already tested this tick")
	assert.Equal(t, 1, d.TestsAttempted)
}
