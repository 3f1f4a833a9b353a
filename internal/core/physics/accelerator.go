package physics

import (
	"ironloop/internal/core/components"
	"ironloop/internal/core/ecs"
)

// Handle is the stable, generational identity of a collider — spec.md
// §3's "stable handle (generational)" for a Collider, kept distinct from
// the owning entity's ecs.Entity handle even though it reuses the same
// (index, generation) shape and allocator implementation.
type Handle = ecs.Entity

// Accelerator is the broad-phase contract of spec.md §4.9: a single
// operation returning a superset of handles within extent of center. False
// positives are expected and must be filtered by the narrow phase; false
// negatives are a bug. The core is agnostic to the underlying structure —
// Grid below is the one concrete implementation this engine ships.
type Accelerator interface {
	GetNeighbours(center components.Vector2, extent float64, out *[]Handle)
}

// Grid is a sparse world-space grid accelerator (a map from cell
// coordinate to that cell's entries), adapted from
// lixenwraith-vi-fighter's engine.SpatialGrid: the same per-cell,
// swap-remove-within-a-cell shape, generalized in two ways the vi-fighter
// original didn't need:
//
//  1. Cells hold a growable slice of entries instead of a fixed [15]Entity array —
//     physics broad-phase clustering (e.g. a pile of bodies at a corner)
//     routinely exceeds a small fixed cap, unlike vi-fighter's terminal
//     game where 15 co-located entities is already an extreme case.
//  2. Coordinates are continuous world-space floats bucketed by a
//     configurable CellSize, not pre-quantized integer grid coordinates.
type Grid struct {
	CellSize float64
	cells    map[cellCoord][]cellEntry
}

type cellCoord struct{ x, y int }

type cellEntry struct {
	handle Handle
	pos    components.Vector2
}

// NewGrid creates an accelerator bucketing by cellSize world units.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{CellSize: cellSize, cells: make(map[cellCoord][]cellEntry)}
}

func (g *Grid) coordOf(pos components.Vector2) cellCoord {
	return cellCoord{
		x: int(floorDiv(pos.X, g.CellSize)),
		y: int(floorDiv(pos.Y, g.CellSize)),
	}
}

func floorDiv(v, size float64) float64 {
	q := v / size
	if q < 0 {
		iq := float64(int(q))
		if iq != q {
			return iq - 1
		}
		return iq
	}
	return float64(int(q))
}

// Add inserts handle at pos. O(1) amortized.
func (g *Grid) Add(handle Handle, pos components.Vector2) {
	c := g.coordOf(pos)
	g.cells[c] = append(g.cells[c], cellEntry{handle: handle, pos: pos})
}

// Remove deletes handle from pos's cell via swap-remove.
func (g *Grid) Remove(handle Handle, pos components.Vector2) {
	c := g.coordOf(pos)
	entries := g.cells[c]
	for i, e := range entries {
		if e.handle == handle {
			last := len(entries) - 1
			entries[i] = entries[last]
			entries = entries[:last]
			if len(entries) == 0 {
				delete(g.cells, c)
			} else {
				g.cells[c] = entries
			}
			return
		}
	}
}

// Clear empties every cell, for reuse across ticks without reallocating the
// backing map's buckets on every step.
func (g *Grid) Clear() {
	for k := range g.cells {
		delete(g.cells, k)
	}
}

// GetNeighbours implements Accelerator: it walks every grid cell whose
// bounds overlap a square of side 2*extent centered on center, appending
// every handle found there. Cells are a superset by construction (a handle
// near a cell boundary may be reported even if its exact distance exceeds
// extent), satisfying the "false positives allowed, false negatives are a
// bug" contract.
func (g *Grid) GetNeighbours(center components.Vector2, extent float64, out *[]Handle) {
	minC := g.coordOf(components.Vector2{X: center.X - extent, Y: center.Y - extent})
	maxC := g.coordOf(components.Vector2{X: center.X + extent, Y: center.Y + extent})

	for x := minC.x; x <= maxC.x; x++ {
		for y := minC.y; y <= maxC.y; y++ {
			for _, e := range g.cells[cellCoord{x, y}] {
				*out = append(*out, e.handle)
			}
		}
	}
}
