package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Allocator_RecyclesSlotWithBumpedGeneration(t *testing.T) {
	// Arrange
	alloc := NewAllocator()

	// Act: S1 (entity recycling) — allocate, destroy, allocate again.
	e1 := alloc.Allocate()
	require.NoError(t, alloc.Deallocate(e1))
	e2 := alloc.Allocate()

	// Assert
	assert.Equal(t, e1.Index, e2.Index)
	assert.Greater(t, e2.Generation, e1.Generation)
	assert.False(t, alloc.IsValid(e1))
	assert.True(t, alloc.IsValid(e2))
}

func Test_Allocator_DeallocateRejectsDoubleFree(t *testing.T) {
	alloc := NewAllocator()
	e := alloc.Allocate()

	require.NoError(t, alloc.Deallocate(e))

	err := alloc.Deallocate(e)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func Test_Allocator_DeallocateRejectsStaleGeneration(t *testing.T) {
	alloc := NewAllocator()
	e1 := alloc.Allocate()
	require.NoError(t, alloc.Deallocate(e1))
	e2 := alloc.Allocate() // reuses e1.Index with a bumped generation

	err := alloc.Deallocate(e1)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.True(t, alloc.IsValid(e2))
}

func Test_Allocator_DeallocateRejectsOutOfRangeIndex(t *testing.T) {
	alloc := NewAllocator()
	err := alloc.Deallocate(Entity{Index: 99, Generation: 1})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func Test_Allocator_GrowsPastInitialCapacity(t *testing.T) {
	alloc := NewAllocator()
	seen := make(map[uint32]bool)

	for i := 0; i < 500; i++ {
		e := alloc.Allocate()
		assert.False(t, seen[e.Index], "index %d allocated twice while live", e.Index)
		seen[e.Index] = true
	}
	assert.GreaterOrEqual(t, alloc.Capacity(), 500)
}

func Test_Allocator_GenerationNeverDecreases(t *testing.T) {
	alloc := NewAllocator()
	e := alloc.Allocate()
	lastGen := e.Generation

	for i := 0; i < 20; i++ {
		require.NoError(t, alloc.Deallocate(e))
		e = alloc.Allocate()
		assert.GreaterOrEqual(t, e.Generation, lastGen)
		lastGen = e.Generation
	}
}
