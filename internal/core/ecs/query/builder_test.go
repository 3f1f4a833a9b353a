package query

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironloop/internal/core/ecs"
	"ironloop/internal/core/ecs/storage"
)

type t1 struct{}
type t2 struct{}

func Test_Builder_QueryFilterYieldsExpectedSubset(t *testing.T) {
	// S3 (query filter): 100 entities, T1 on all, T2 on even indices.
	alloc := ecs.NewAllocator()
	store1 := storage.New[t1]()
	store2 := storage.New[t2]()

	entities := make([]ecs.Entity, 100)
	for i := 0; i < 100; i++ {
		e := alloc.Allocate()
		entities[i] = e
		store1.Add(e, t1{})
		if i%2 == 0 {
			store2.Add(e, t2{})
		}
	}

	var matched []ecs.Entity
	New().Read(store1, store2).ForEach(func(e ecs.Entity) {
		matched = append(matched, e)
	})

	require.Len(t, matched, 50)
	for _, e := range matched {
		idx := indexOf(entities, e)
		require.GreaterOrEqual(t, idx, 0)
		assert.Zero(t, idx%2)
	}
}

func indexOf(entities []ecs.Entity, target ecs.Entity) int {
	for i, e := range entities {
		if e == target {
			return i
		}
	}
	return -1
}

func Test_Builder_WriteAndReadOfSameStorePanics(t *testing.T) {
	store := storage.New[t1]()

	assert.Panics(t, func() {
		New().Read(store).Write(store)
	})
}

func Test_Builder_ForEachParallelCoversEveryEntity(t *testing.T) {
	alloc := ecs.NewAllocator()
	store1 := storage.New[t1]()
	for i := 0; i < 37; i++ {
		store1.Add(alloc.Allocate(), t1{})
	}

	var seen int64
	err := New().Read(store1).ForEachParallel(4, func(e ecs.Entity) error {
		atomic.AddInt64(&seen, 1)
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 37, atomic.LoadInt64(&seen))
}

func Test_Builder_ForEachParallelRejectsWriteStores(t *testing.T) {
	store := storage.New[t1]()
	assert.Panics(t, func() {
		_ = New().Write(store).ForEachParallel(2, func(ecs.Entity) error { return nil })
	})
}

func Test_Builder_SingleStoreReturnsAllEntities(t *testing.T) {
	alloc := ecs.NewAllocator()
	store := storage.New[t1]()
	e := alloc.Allocate()
	store.Add(e, t1{})

	var matched []ecs.Entity
	New().Read(store).ForEach(func(e ecs.Entity) { matched = append(matched, e) })

	assert.Equal(t, []ecs.Entity{e}, matched)
}
