package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
)

// ErrInvariant marks a broken single-occupancy invariant.
var ErrInvariant = errors.New("level invariant violated")

// Level owns every entity of one puzzle. Entities are keyed by generational
// handles so identity survives position changes in the middle of a turn.
// Single-goroutine access only.
type Level struct {
	Name      string
	NextLevel string
	Path      string // runtime only, never persisted

	pool     *ecs.EntityPool
	entities *ecs.PtrComponentStore[Entity]
	grid     *EntityGrid
	rel      *data.RelationTable

	duplicates []grid.Pos // cells evicted while loading
}

// NewLevel returns an empty level. A nil table means the built-in relations.
func NewLevel(rel *data.RelationTable) *Level {
	if rel == nil {
		rel = data.DefaultRelations()
	}
	return &Level{
		pool:     ecs.NewEntityPool(),
		entities: ecs.NewPtrComponentStore[Entity](),
		grid:     newEntityGrid(),
		rel:      rel,
	}
}

func (l *Level) Relations() *data.RelationTable { return l.rel }

// Len returns the number of entities.
func (l *Level) Len() int { return l.entities.Len() }

// Get returns the live entity for a handle. The pointer stays valid until
// the entity is removed; change positions only through MoveEntity.
func (l *Level) Get(id ecs.EntityID) (*Entity, bool) {
	return l.entities.Get(id)
}

// IDs returns all handles in ascending order.
func (l *Level) IDs() []ecs.EntityID { return l.entities.IDs() }

// EntityAt returns the occupant of a cell (lowest handle if shared).
func (l *Level) EntityAt(p grid.Pos) (ecs.EntityID, *Entity, bool) {
	id := l.grid.OccupantAt(p)
	if id == 0 {
		return 0, nil, false
	}
	e, ok := l.entities.Get(id)
	return id, e, ok
}

// OccupantsAt returns every handle on a cell.
func (l *Level) OccupantsAt(p grid.Pos) []ecs.EntityID { return l.grid.OccupantsAt(p) }

func (l *Level) IsEmpty(p grid.Pos) bool { return !l.grid.IsOccupied(p) }

// SetEntity places e, first evicting whatever stood on its cell.
// Returns the new handle and the evicted entity, if any.
func (l *Level) SetEntity(e Entity) (ecs.EntityID, *Entity) {
	evicted := l.RemoveEntity(e.Pos)
	id := l.pool.Create()
	stored := e.Clone()
	l.entities.Set(id, &stored)
	l.grid.Occupy(stored.Pos, id)
	return id, evicted
}

// RemoveEntity removes the occupant of a cell and returns it.
func (l *Level) RemoveEntity(p grid.Pos) *Entity {
	id := l.grid.OccupantAt(p)
	if id == 0 {
		return nil
	}
	return l.Remove(id)
}

// Remove deletes an entity by handle and invalidates the handle.
func (l *Level) Remove(id ecs.EntityID) *Entity {
	e, ok := l.entities.Get(id)
	if !ok {
		return nil
	}
	l.grid.Vacate(e.Pos, id)
	l.entities.Remove(id)
	l.pool.Destroy(id)
	return e
}

// MoveEntity relocates an entity and keeps the spatial index in sync.
// The destination may be occupied; callers own the invariant.
func (l *Level) MoveEntity(id ecs.EntityID, to grid.Pos) {
	e, ok := l.entities.Get(id)
	if !ok {
		return
	}
	l.grid.Move(e.Pos, to, id)
	e.Pos = to
}

// Player returns the first player-controlled entity (lowest handle).
func (l *Level) Player() (ecs.EntityID, *Entity, bool) {
	for _, id := range l.entities.IDs() {
		e, _ := l.entities.Get(id)
		if e.IsPlayer() {
			return id, e, true
		}
	}
	return 0, nil, false
}

// AnyOfType reports whether an entity of one of the given types exists.
func (l *Level) AnyOfType(types []data.EntityType) bool {
	found := false
	l.entities.Each(func(_ ecs.EntityID, e *Entity) {
		if !found {
			for _, t := range types {
				if e.Type == t {
					found = true
					return
				}
			}
		}
	})
	return found
}

// EntityView is a read-only snapshot of one entity for renderers.
type EntityView struct {
	ID ecs.EntityID
	Entity
}

// Entities returns deep copies of every entity, top row first.
func (l *Level) Entities() []EntityView {
	out := make([]EntityView, 0, l.entities.Len())
	l.entities.Each(func(id ecs.EntityID, e *Entity) {
		out = append(out, EntityView{ID: id, Entity: e.Clone()})
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos != out[j].Pos {
			return grid.Less(out[i].Pos, out[j].Pos)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ResetIntents sets every controller back to Wait.
func (l *Level) ResetIntents() {
	l.entities.Each(func(_ ecs.EntityID, e *Entity) {
		if e.Controller != nil {
			e.Controller.NextMove = grid.Wait
		}
	})
}

// Validate checks the single-occupancy invariant.
func (l *Level) Validate() error {
	shared := l.grid.Shared()
	if len(shared) == 0 {
		return nil
	}
	cells := make([]string, len(shared))
	for i, p := range shared {
		cells[i] = p.String()
	}
	return fmt.Errorf("%w: shared cells %s", ErrInvariant, strings.Join(cells, " "))
}

// DuplicatePositions lists cells where loading evicted an earlier record.
func (l *Level) DuplicatePositions() []grid.Pos { return l.duplicates }
