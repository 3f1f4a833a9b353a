package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewTransform_StartsAtGivenPositionWithZeroVelocity(t *testing.T) {
	tr := NewTransform(Vector2{X: 3, Y: 4})

	assert.Equal(t, Vector2{X: 3, Y: 4}, tr.Position)
	assert.Equal(t, Vector2{}, tr.Velocity)
	assert.Equal(t, Vector2{}, tr.FrameStartingPos)
}
