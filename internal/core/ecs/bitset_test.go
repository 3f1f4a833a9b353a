package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Bitset_SetGetWithinInlineWord(t *testing.T) {
	var b Bitset
	b.Set(3)
	b.Set(63)

	assert.True(t, b.Has(3))
	assert.True(t, b.Has(63))
	assert.False(t, b.Has(4))
}

func Test_Bitset_GrowsTailPastSixtyFourBits(t *testing.T) {
	var b Bitset
	b.Set(130)

	assert.True(t, b.Has(130))
	assert.False(t, b.Has(129))
	assert.False(t, b.Has(1000)) // past the end returns false, never grows implicitly
}

func Test_Bitset_Clear(t *testing.T) {
	var b Bitset
	b.Set(5)
	b.Set(200)
	b.Clear(5)
	b.Clear(200)

	assert.False(t, b.Has(5))
	assert.False(t, b.Has(200))
}

func Test_Bitset_HasAllAndHasAny(t *testing.T) {
	var a, b Bitset
	a.Set(1)
	a.Set(70)
	b.Set(1)

	assert.True(t, a.HasAll(&b))
	assert.False(t, b.HasAll(&a))
	assert.True(t, a.HasAny(&b))

	var c Bitset
	c.Set(500)
	assert.False(t, a.HasAny(&c))
}

func Test_Bitset_AndOr(t *testing.T) {
	var a, b Bitset
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	union := a
	union.Or(&b)
	assert.True(t, union.Has(1))
	assert.True(t, union.Has(2))
	assert.True(t, union.Has(3))

	inter := a
	inter.And(&b)
	assert.False(t, inter.Has(1))
	assert.True(t, inter.Has(2))
	assert.False(t, inter.Has(3))
}

func Test_Bitset_ForEachSetVisitsAscending(t *testing.T) {
	var b Bitset
	b.Set(5)
	b.Set(1)
	b.Set(130)

	var seen []int
	b.ForEachSet(func(i int) { seen = append(seen, i) })

	assert.Equal(t, []int{1, 5, 130}, seen)
}

func Test_Bitset_IsSubsetOf(t *testing.T) {
	var required, membership Bitset
	required.Set(2)
	membership.Set(2)
	membership.Set(9)

	assert.True(t, required.IsSubsetOf(&membership))

	required.Set(99)
	assert.False(t, required.IsSubsetOf(&membership))
}
