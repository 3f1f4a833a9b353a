package components

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Vector2_AddSubScale(t *testing.T) {
	a := Vector2{X: 1, Y: 2}
	b := Vector2{X: 3, Y: -1}

	assert.Equal(t, Vector2{X: 4, Y: 1}, a.Add(b))
	assert.Equal(t, Vector2{X: -2, Y: 3}, a.Sub(b))
	assert.Equal(t, Vector2{X: 2, Y: 4}, a.Scale(2))
}

func Test_Vector2_DotAndLength(t *testing.T) {
	v := Vector2{X: 3, Y: 4}
	assert.Equal(t, 25.0, v.Dot(v))
	assert.Equal(t, 5.0, v.Length())
}

func Test_Vector2_NormalizeUnitLength(t *testing.T) {
	v := Vector2{X: 3, Y: 4}
	n := v.Normalize()
	assert.InDelta(t, 1.0, n.Length(), 1e-9)
}

func Test_Vector2_NormalizeDegenerateReturnsZero(t *testing.T) {
	assert.Equal(t, Vector2{}, Vector2{}.Normalize())
}

func Test_Vector2_IsFiniteRejectsNaNAndInf(t *testing.T) {
	assert.True(t, Vector2{X: 1, Y: 1}.IsFinite())
	assert.False(t, Vector2{X: math.NaN(), Y: 0}.IsFinite())
	assert.False(t, Vector2{X: math.Inf(1), Y: 0}.IsFinite())
}
