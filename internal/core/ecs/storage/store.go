// Package storage provides the generic, packed component storage (C3) that
// sits directly above the ecs leaf package. It never imports ecs/query or
// ecs/world, keeping the dependency chain one-directional:
// ecs -> ecs/storage -> ecs/query -> ecs/world.
package storage

import (
	"fmt"
	"reflect"
	"sync"

	"ironloop/internal/core/ecs"
)

// AnyStore is the type-erased view of a Store[T] that the world registry and
// query builder operate on without knowing T. A heterogeneous
// map[reflect.Type]AnyStore is how world.World keeps one store per
// component type while still exposing the typed Get/GetMut free functions
// below to callers that do know T.
type AnyStore interface {
	HasEntity(e ecs.Entity) bool
	RemoveEntity(e ecs.Entity)
	Count() int
	TypeName() string
	All() []ecs.Entity
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// Store is a packed, generic component store for exactly one component
// type T. It keeps a dense []T alongside a dense []ecs.Entity of owners and
// an index-indirection table, so iteration is a straight slice walk
// (I4) and Add/Remove/Has/Get are O(1) via swap-remove (I5/I6) — the same
// shape as the teacher's SparseSet/ComponentStore pair and
// lixenwraith-vi-fighter's engine.Store[T], merged into one generic type.
//
// entityIndex is keyed by Entity.Index (the allocator slot), not by the
// full generational handle, so a freed-and-reused slot naturally reuses
// its redirection slot too; entityGeneration records the generation the
// component was added under, so a stale handle reaching Get/Has is caught
// instead of silently returning another entity's data.
type Store[T any] struct {
	mu               sync.RWMutex
	dense            []T
	denseEntities    []ecs.Entity
	entityIndex      []int32 // Entity.Index -> position in dense, or -1
	entityGeneration []uint32
	typeName         string
}

const unset int32 = -1

// New creates an empty store for component type T.
func New[T any]() *Store[T] {
	var zero T
	return &Store[T]{typeName: reflect.TypeOf(zero).String()}
}

func (s *Store[T]) growIndex(n int) {
	if len(s.entityIndex) >= n {
		return
	}
	grown := make([]int32, n)
	for i := range grown {
		grown[i] = unset
	}
	copy(grown, s.entityIndex)
	genGrown := make([]uint32, n)
	copy(genGrown, s.entityGeneration)
	s.entityIndex = grown
	s.entityGeneration = genGrown
}

// Add inserts the component value for e. Adding a component to an entity
// that already carries one of type T is a programmer error, not an
// overwrite — fatal, per the original engine's add_component.
func (s *Store[T]) Add(e ecs.Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.growIndex(int(e.Index) + 1)
	if slot := s.entityIndex[e.Index]; slot != unset && s.entityGeneration[e.Index] == e.Generation {
		panic(ecs.ErrComponentExists(e, s.typeName))
	}

	slot := int32(len(s.dense))
	s.dense = append(s.dense, val)
	s.denseEntities = append(s.denseEntities, e)
	s.entityIndex[e.Index] = slot
	s.entityGeneration[e.Index] = e.Generation
}

// Remove deletes e's component, if present, via swap-remove: the last dense
// element is moved into the freed slot and its redirection entry is
// patched, keeping the dense array contiguous.
func (s *Store[T]) Remove(e ecs.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(e)
}

func (s *Store[T]) removeLocked(e ecs.Entity) {
	if int(e.Index) >= len(s.entityIndex) {
		return
	}
	slot := s.entityIndex[e.Index]
	if slot == unset || s.entityGeneration[e.Index] != e.Generation {
		return
	}

	last := int32(len(s.dense) - 1)
	if slot != last {
		s.dense[slot] = s.dense[last]
		movedEntity := s.denseEntities[last]
		s.denseEntities[slot] = movedEntity
		s.entityIndex[movedEntity.Index] = slot
	}
	s.dense = s.dense[:last]
	s.denseEntities = s.denseEntities[:last]
	s.entityIndex[e.Index] = unset
	s.entityGeneration[e.Index] = 0
}

// RemoveEntity implements AnyStore for the world registry's teardown loop.
func (s *Store[T]) RemoveEntity(e ecs.Entity) { s.Remove(e) }

// Has reports whether e currently owns a component in this store, under the
// exact generation recorded at insertion time.
func (s *Store[T]) Has(e ecs.Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLocked(e)
}

func (s *Store[T]) hasLocked(e ecs.Entity) bool {
	if int(e.Index) >= len(s.entityIndex) {
		return false
	}
	return s.entityIndex[e.Index] != unset && s.entityGeneration[e.Index] == e.Generation
}

// HasEntity implements AnyStore.
func (s *Store[T]) HasEntity(e ecs.Entity) bool { return s.Has(e) }

// Get returns e's component value and true, or the zero value and false.
func (s *Store[T]) Get(e ecs.Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasLocked(e) {
		var zero T
		return zero, false
	}
	return s.dense[s.entityIndex[e.Index]], true
}

// GetMut returns a pointer to e's component for in-place mutation, or nil.
// Callers must hold the store's write lock (via a query.Builder.Write, or
// manually) before dereferencing the pointer across multiple operations.
func (s *Store[T]) GetMut(e ecs.Entity) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasLocked(e) {
		return nil, false
	}
	return &s.dense[s.entityIndex[e.Index]], true
}

// MustGet returns e's component value, panicking with a fatal ECSError if
// absent — for call sites where the caller has already established (via a
// query filter) that the component must be present.
func (s *Store[T]) MustGet(e ecs.Entity) T {
	v, ok := s.Get(e)
	if !ok {
		ecs.Fatalf(ecs.ErrCodeUnregisteredType, s.typeName, e, "MustGet(%s) called without prior Has/query guard", s.typeName)
	}
	return v
}

// All returns a copy of the dense entity slice, in storage order.
func (s *Store[T]) All() []ecs.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ecs.Entity, len(s.denseEntities))
	copy(out, s.denseEntities)
	return out
}

// Count returns the number of entities currently carrying this component.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dense)
}

// TypeName implements AnyStore, reporting T's reflect.Type string for
// diagnostics and error messages.
func (s *Store[T]) TypeName() string { return s.typeName }

// Lock/Unlock/RLock/RUnlock implement AnyStore so ecs/query can acquire
// locks across heterogeneous stores in a canonical order without knowing
// each store's T.
func (s *Store[T]) Lock()    { s.mu.Lock() }
func (s *Store[T]) Unlock()  { s.mu.Unlock() }
func (s *Store[T]) RLock()   { s.mu.RLock() }
func (s *Store[T]) RUnlock() { s.mu.RUnlock() }

// Get is the free-function accessor used inside query callbacks, mirroring
// vi-fighter's store.Get(e) idiom: Go methods cannot introduce new type
// parameters, so typed access from an AnyStore-typed registry goes through
// a type assertion to *Store[T] here rather than a generic method.
func Get[T any](s AnyStore, e ecs.Entity) (T, bool) {
	typed, ok := s.(*Store[T])
	if !ok {
		var zero T
		ecs.Fatalf(ecs.ErrCodeUnregisteredType, fmt.Sprintf("%T", s), e, "storage.Get type mismatch: store is not *Store[%T]", zero)
		return zero, false
	}
	return typed.Get(e)
}

// GetMut is the mutable counterpart of Get.
func GetMut[T any](s AnyStore, e ecs.Entity) (*T, bool) {
	typed, ok := s.(*Store[T])
	if !ok {
		var zero T
		ecs.Fatalf(ecs.ErrCodeUnregisteredType, fmt.Sprintf("%T", s), e, "storage.GetMut type mismatch: store is not *Store[%T]", zero)
		return nil, false
	}
	return typed.GetMut(e)
}
