// Package query implements the query engine (C5): component-intersection
// queries over heterogeneous storage.AnyStore instances, with read/write
// lock acquisition in a canonical order to keep concurrent queries
// deadlock-free, and a read-only parallel fan-out built on errgroup.
package query

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"ironloop/internal/core/ecs"
	"ironloop/internal/core/ecs/storage"
)

// Builder accumulates read and write component-store filters, grounded on
// lixenwraith-vi-fighter's QueryBuilder (smallest-store-first intersection,
// fluent With-style chaining) generalized to track read/write intent so
// locks can be acquired before iteration and released after.
type Builder struct {
	reads    []storage.AnyStore
	writes   []storage.AnyStore
	executed bool
	results  []ecs.Entity
}

// New creates an empty query builder.
func New() *Builder {
	return &Builder{}
}

// Read adds stores this query only inspects. Entities must carry a
// component in every store passed to Read or Write to appear in results.
func (b *Builder) Read(stores ...storage.AnyStore) *Builder {
	b.checkNotExecuted()
	for _, s := range stores {
		for _, w := range b.writes {
			if w == s {
				ecs.Fatalf(ecs.ErrCodeUnregisteredType, s.TypeName(), ecs.Invalid,
					"store %s passed to both Read and Write on the same query", s.TypeName())
			}
		}
	}
	b.reads = append(b.reads, stores...)
	return b
}

// Write adds stores this query will mutate through. Write stores are
// locked exclusively; a store may not appear in both Read and Write on the
// same builder (that is an overlapping read/write set, a programmer error
// per spec.md §7 — it panics rather than silently racing).
func (b *Builder) Write(stores ...storage.AnyStore) *Builder {
	b.checkNotExecuted()
	for _, s := range stores {
		for _, r := range b.reads {
			if r == s {
				ecs.Fatalf(ecs.ErrCodeUnregisteredType, s.TypeName(), ecs.Invalid,
					"store %s passed to both Read and Write on the same query", s.TypeName())
			}
		}
	}
	b.writes = append(b.writes, stores...)
	return b
}

func (b *Builder) checkNotExecuted() {
	if b.executed {
		panic("query already executed - cannot modify after ForEach()/ForEachParallel()/Count()")
	}
}

// allStores returns every store this query touches, sorted into a
// canonical order by type name. Sorting by a stable, content-derived key
// (rather than registration order, which would require depending on
// ecs/world and creating an import cycle) gives every query built from the
// same stores the same lock order, which is what actually prevents
// deadlock between two queries that touch overlapping store sets.
func (b *Builder) allStores() []storage.AnyStore {
	all := make([]storage.AnyStore, 0, len(b.reads)+len(b.writes))
	all = append(all, b.reads...)
	all = append(all, b.writes...)
	sort.Slice(all, func(i, j int) bool { return all[i].TypeName() < all[j].TypeName() })
	return all
}

func (b *Builder) isWrite(s storage.AnyStore) bool {
	for _, w := range b.writes {
		if w == s {
			return true
		}
	}
	return false
}

func (b *Builder) lockAll() {
	for _, s := range b.allStores() {
		if b.isWrite(s) {
			s.Lock()
		} else {
			s.RLock()
		}
	}
}

func (b *Builder) unlockAll() {
	ordered := b.allStores()
	for i := len(ordered) - 1; i >= 0; i-- {
		s := ordered[i]
		if b.isWrite(s) {
			s.Unlock()
		} else {
			s.RUnlock()
		}
	}
}

// execute computes the intersection of every store's entity set. Callers
// must hold the locks (via lockAll) before calling this.
func (b *Builder) execute() []ecs.Entity {
	if b.executed {
		return b.results
	}
	b.executed = true

	stores := make([]storage.AnyStore, 0, len(b.reads)+len(b.writes))
	stores = append(stores, b.reads...)
	stores = append(stores, b.writes...)

	if len(stores) == 0 {
		b.results = nil
		return b.results
	}
	if len(stores) == 1 {
		b.results = stores[0].All()
		return b.results
	}

	sort.Slice(stores, func(i, j int) bool { return stores[i].Count() < stores[j].Count() })

	candidates := stores[0].All()
	for i := 1; i < len(stores); i++ {
		store := stores[i]
		filtered := candidates[:0]
		for _, e := range candidates {
			if store.HasEntity(e) {
				filtered = append(filtered, e)
			}
		}
		candidates = filtered
		if len(candidates) == 0 {
			break
		}
	}
	b.results = candidates
	return b.results
}

// ForEach locks every store touched by the query in canonical order,
// computes the matching entity set, invokes fn for each entity, then
// unlocks in reverse order. fn may call storage.Get/GetMut against any
// store passed to Read/Write on this builder.
func (b *Builder) ForEach(fn func(ecs.Entity)) {
	b.lockAll()
	defer b.unlockAll()
	for _, e := range b.execute() {
		fn(e)
	}
}

// ForEachParallel is the read-only fan-out required by spec.md §5: it is
// only valid when the builder has no Write stores (enforced below), locks
// every read store with RLock, and distributes the matching entities across
// a bounded errgroup of workers. Each worker processes a contiguous shard,
// so per-worker ordering is preserved even though workers run concurrently.
// fn returning an error cancels the remaining shards and the first error is
// returned by ForEachParallel. The locks acquired for this query are held
// for its entire lifetime — through every worker's execution of fn, not
// just through the entity-set computation — so a concurrent writer cannot
// mutate a store out from under the still-running callbacks.
func (b *Builder) ForEachParallel(workers int, fn func(ecs.Entity) error) error {
	if len(b.writes) != 0 {
		ecs.Fatalf(ecs.ErrCodeUnregisteredType, "", ecs.Invalid,
			"ForEachParallel requires a read-only query; this builder has %d write store(s)", len(b.writes))
	}
	if workers < 1 {
		workers = 1
	}

	b.lockAll()
	defer b.unlockAll()
	entities := b.execute()

	if len(entities) == 0 {
		return nil
	}
	if workers > len(entities) {
		workers = len(entities)
	}

	g, ctx := errgroup.WithContext(context.Background())
	shard := (len(entities) + workers - 1) / workers
	for start := 0; start < len(entities); start += shard {
		end := start + shard
		if end > len(entities) {
			end = len(entities)
		}
		batch := entities[start:end]
		g.Go(func() error {
			for _, e := range batch {
				if ctx.Err() != nil {
					return nil
				}
				if err := fn(e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Count returns how many entities currently match the query, without
// invoking a callback. Useful for metrics and pre-sizing result buffers.
func (b *Builder) Count() int {
	b.lockAll()
	defer b.unlockAll()
	return len(b.execute())
}
