package world

import (
	"sort"

	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/grid"
)

// EntityGrid is a tile occupancy map for O(1) collision checks.
// Supports multiple occupants per tile: a cell may hold more than one entity
// between a capture and the resolution phase, or after a corrupt load.
type EntityGrid struct {
	tiles map[grid.Pos]map[ecs.EntityID]struct{}
}

func newEntityGrid() *EntityGrid {
	return &EntityGrid{tiles: make(map[grid.Pos]map[ecs.EntityID]struct{})}
}

// Occupy marks an entity as occupying a tile.
func (g *EntityGrid) Occupy(p grid.Pos, id ecs.EntityID) {
	cell := g.tiles[p]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{}, 1)
		g.tiles[p] = cell
	}
	cell[id] = struct{}{}
}

// Vacate removes an entity from a tile.
func (g *EntityGrid) Vacate(p grid.Pos, id ecs.EntityID) {
	cell := g.tiles[p]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.tiles, p)
		}
	}
}

// Move atomically vacates old tile and occupies new tile.
func (g *EntityGrid) Move(from, to grid.Pos, id ecs.EntityID) {
	if from == to {
		return
	}
	g.Vacate(from, id)
	g.Occupy(to, id)
}

// IsOccupied returns true if any entity occupies the tile.
func (g *EntityGrid) IsOccupied(p grid.Pos) bool {
	return len(g.tiles[p]) > 0
}

// OccupantAt returns the lowest-ID occupant of the tile, or 0 if empty.
// Picking the lowest ID keeps lookups deterministic when a tile is shared.
func (g *EntityGrid) OccupantAt(p grid.Pos) ecs.EntityID {
	var best ecs.EntityID
	for id := range g.tiles[p] {
		if best == 0 || id < best {
			best = id
		}
	}
	return best
}

// OccupantsAt returns every occupant of the tile in ascending ID order.
func (g *EntityGrid) OccupantsAt(p grid.Pos) []ecs.EntityID {
	cell := g.tiles[p]
	if len(cell) == 0 {
		return nil
	}
	ids := make([]ecs.EntityID, 0, len(cell))
	for id := range cell {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Shared returns every tile holding more than one entity, top row first.
func (g *EntityGrid) Shared() []grid.Pos {
	var out []grid.Pos
	for p, cell := range g.tiles {
		if len(cell) > 1 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return grid.Less(out[i], out[j]) })
	return out
}
