// Package world provides the World façade (C4): the single owner of entity
// lifecycle and component storage, merging what the teacher split into a
// DefaultEntityManager and an unwired ComponentStore into one live registry.
// Only the slice of the teacher's EntityManager interface named by
// spec.md is carried — see DESIGN.md for the dropped surface
// (hierarchy/tag/group/archetype/serialization/mod-sandboxing).
package world

import (
	"reflect"
	"sync"

	"ironloop/internal/core/ecs"
	"ironloop/internal/core/ecs/query"
	"ironloop/internal/core/ecs/storage"
)

// World owns the entity allocator and one storage.AnyStore per registered
// component type, plus a per-entity component-membership Bitset that
// AddComponent, RemoveComponent and DestroyEntity keep up to date.
// HasComponent and queries consult the stores, not the bitsets.
type World struct {
	mu sync.RWMutex

	allocator *ecs.Allocator
	stores    map[reflect.Type]storage.AnyStore
	order     []reflect.Type // registration order, for deterministic iteration in DestroyEntity

	typeIndex map[reflect.Type]int // component type -> bit index, for membership bitsets
	bitsets   []ecs.Bitset         // indexed by Entity.Index
}

// New creates an empty world.
func New() *World {
	return &World{
		allocator: ecs.NewAllocator(),
		stores:    make(map[reflect.Type]storage.AnyStore),
		typeIndex: make(map[reflect.Type]int),
	}
}

// NewEntity allocates a fresh entity handle.
func (w *World) NewEntity() ecs.Entity {
	return w.allocator.Allocate()
}

// IsValid reports whether e refers to a currently live entity.
func (w *World) IsValid(e ecs.Entity) bool {
	return w.allocator.IsValid(e)
}

// DestroyEntity removes every component e carries (in store-registration
// order) and then frees its allocator slot. Destroying an already-invalid
// handle is a no-op, matching the teacher's tolerant DestroyEntity.
func (w *World) DestroyEntity(e ecs.Entity) {
	if !w.allocator.IsValid(e) {
		return
	}

	w.mu.RLock()
	order := make([]reflect.Type, len(w.order))
	copy(order, w.order)
	w.mu.RUnlock()

	for _, t := range order {
		w.mu.RLock()
		s := w.stores[t]
		w.mu.RUnlock()
		s.RemoveEntity(e)
	}

	if int(e.Index) < len(w.bitsets) {
		w.bitsets[e.Index].Reset()
	}
	_ = w.allocator.Deallocate(e)
}

// growBitsets ensures the per-entity bitset slice covers index.
func (w *World) growBitsets(index int) {
	if len(w.bitsets) > index {
		return
	}
	grown := make([]ecs.Bitset, index+1)
	copy(grown, w.bitsets)
	w.bitsets = grown
}

// Register declares a component type in the world's registry. It must be
// called exactly once before the first AddComponent[T] for that type;
// registering the same T twice is fatal.
func Register[T any](w *World) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.stores[t]; exists {
		ecs.Fatalf(ecs.ErrCodeComponentExists, t.String(), ecs.Invalid,
			"component type %s registered twice", t.String())
	}
	w.stores[t] = storage.New[T]()
	w.order = append(w.order, t)
	w.typeIndex[t] = len(w.typeIndex)
}

// storeFor fetches the registered store for T, raising a fatal ECSError if
// T was never registered — an unregistered-component-type access is a
// programmer error per spec.md §7, not a recoverable miss.
func storeFor[T any](w *World) (*storage.Store[T], int) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	w.mu.RLock()
	any0, ok := w.stores[t]
	bit := w.typeIndex[t]
	w.mu.RUnlock()

	if !ok {
		ecs.Fatalf(ecs.ErrCodeUnregisteredType, t.String(), ecs.Invalid,
			"component type %s used before world.Register[%s]", t.String(), t.String())
	}
	typed, ok := any0.(*storage.Store[T])
	if !ok {
		ecs.Fatalf(ecs.ErrCodeUnregisteredType, t.String(), ecs.Invalid,
			"internal registry corruption for component type %s", t.String())
	}
	return typed, bit
}

// AddComponent attaches val of type T to e, registering the component's
// membership bit. T must have been registered with Register[T] first.
func AddComponent[T any](w *World, e ecs.Entity, val T) {
	if !w.allocator.IsValid(e) {
		ecs.Fatalf(ecs.ErrCodeInvalidHandle, "", e, "AddComponent called with stale or invalid entity handle")
	}
	store, bit := storeFor[T](w)
	store.Add(e, val)

	w.mu.Lock()
	w.growBitsets(int(e.Index))
	w.bitsets[e.Index].Set(bit)
	w.mu.Unlock()
}

// RemoveComponent detaches T from e, if present.
func RemoveComponent[T any](w *World, e ecs.Entity) {
	store, bit := storeFor[T](w)
	store.Remove(e)

	w.mu.Lock()
	if int(e.Index) < len(w.bitsets) {
		w.bitsets[e.Index].Clear(bit)
	}
	w.mu.Unlock()
}

// HasComponent reports whether e currently carries a T.
func HasComponent[T any](w *World, e ecs.Entity) bool {
	store, _ := storeFor[T](w)
	return store.Has(e)
}

// GetComponent returns e's T value and true, or the zero value and false —
// the spec's recoverable-absence idiom.
func GetComponent[T any](w *World, e ecs.Entity) (T, bool) {
	store, _ := storeFor[T](w)
	return store.Get(e)
}

// GetComponentMut returns a pointer to e's T for in-place mutation.
func GetComponentMut[T any](w *World, e ecs.Entity) (*T, bool) {
	store, _ := storeFor[T](w)
	return store.GetMut(e)
}

// MustGetComponent returns e's T, panicking with a fatal ECSError if
// absent. For call sites reached only after a query has already guarded
// the component's presence.
func MustGetComponent[T any](w *World, e ecs.Entity) T {
	store, _ := storeFor[T](w)
	return store.MustGet(e)
}

// StoreOf exposes the raw AnyStore for T, for passing to the Read/Write
// methods of an ecs/query.Builder (Register must be called first).
func StoreOf[T any](w *World) storage.AnyStore {
	store, _ := storeFor[T](w)
	return store
}

// Query starts a new, empty query builder. The builder holds no reference
// to this world; callers chain .Read(world.StoreOf[T](w), ...) /
// .Write(...) and then .ForEach.
func (w *World) Query() *query.Builder {
	return query.New()
}

// EntityCount returns the number of entity slots ever allocated, an upper
// bound on the number of live entities: freed slots are still counted.
func (w *World) EntityCount() int {
	// Capacity is an upper bound including freed slots; for the engine's
	// diagnostic purposes (debug overlay, metrics) that is sufficient and
	// avoids a second live-count bookkeeping structure.
	return w.allocator.Capacity()
}
