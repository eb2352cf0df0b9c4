package system

import (
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/event"
	"github.com/pawsteps/engine/internal/core/grid"
	coresys "github.com/pawsteps/engine/internal/core/system"
	"github.com/pawsteps/engine/internal/world"
)

// MovementSystem carries out the decided moves: plain steps, push chains,
// making way and capture by contact. Entities are visited top row first,
// left to right; each entity moves at most once per turn. Phase 2 (Move).
type MovementSystem struct {
	level *world.Level
	deps  *Deps

	// per-turn state
	visited  mapset.Set[ecs.EntityID]
	maxDepth int
}

func NewMovementSystem(l *world.Level, deps *Deps) *MovementSystem {
	return &MovementSystem{level: l, deps: deps}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MovementSystem) Update(_ coresys.Input) {
	order := s.visitOrder()
	s.visited = mapset.New[ecs.EntityID]()
	s.maxDepth = len(order)
	for _, id := range order {
		if _, ok := s.level.Get(id); ok {
			s.move(nil, id, grid.Pos{}, 0)
		}
	}
}

func (s *MovementSystem) visitOrder() []ecs.EntityID {
	views := s.level.Entities()
	order := make([]ecs.EntityID, len(views))
	for i, v := range views {
		order[i] = v.ID
	}
	return order
}

// move tries to step entity id one cell. The direction is the entity's own
// intent when it has a controller, otherwise push (the direction it is being
// pushed in, zero for none). prev is the cell of the entity that asked it to
// move, nil at the top level. Reports whether the entity moved somewhere
// other than prev.
func (s *MovementSystem) move(prev *grid.Pos, id ecs.EntityID, push grid.Pos, depth int) bool {
	e, ok := s.level.Get(id)
	if !ok {
		return false
	}
	dir := push
	pushed := true
	if e.Controller != nil {
		dir = e.Controller.NextMove.Dir()
		pushed = false
	}
	if dir.IsZero() || depth > s.maxDepth {
		return false
	}
	if s.visited.Has(id) {
		return false
	}
	s.visited.Put(id)

	from := e.Pos
	next := from.Add(dir)
	if leash := e.Controller.Leash(); leash != nil && !leash.Allows(next) {
		event.Emit(s.deps.Bus, event.LeashHeld{ID: id, At: from})
		return false
	}

	moved := true
	if oid, other, occupied := s.level.EntityAt(next); occupied {
		moved = s.makeWay(from, id, e, oid, other, dir, depth)
	}

	// the mover itself may have been eaten while the chain resolved
	if _, ok := s.level.Get(id); !ok {
		return false
	}
	if moved && !s.level.IsEmpty(next) {
		moved = false
	}
	if !moved {
		return false
	}

	s.level.MoveEntity(id, next)
	event.Emit(s.deps.Bus, event.EntityMoved{ID: id, From: from, To: next, Pushed: pushed})
	return prev == nil || next != *prev
}

// makeWay clears the occupied target cell for the mover: push a pushable
// occupant along, let the occupant walk off on its own intent, or eat it.
func (s *MovementSystem) makeWay(from grid.Pos, id ecs.EntityID, e *world.Entity, oid ecs.EntityID, other *world.Entity, dir grid.Pos, depth int) bool {
	rel := s.level.Relations()
	attracts := rel.Attracts(e.Type, other.Type)
	at := other.Pos

	if !attracts && rel.IsPushable(other.Type) {
		return s.move(&from, oid, dir, depth+1)
	}
	if s.move(&from, oid, grid.Pos{}, depth+1) {
		return true
	}
	if !attracts {
		return false
	}
	if cur, ok := s.level.Get(oid); !ok || cur.Pos != at {
		return false
	}
	if _, ok := s.level.Get(id); !ok {
		return false
	}
	s.level.Remove(oid)
	if e.Controller != nil {
		e.Controller.ForgetTarget()
	}
	event.Emit(s.deps.Bus, event.EntityConsumed{Consumer: id, Victim: oid, At: at, Phase: coresys.PhaseMove.String()})
	s.deps.Log.Debug("entity consumed",
		zap.Uint64("consumer", uint64(id)),
		zap.Uint64("victim", uint64(oid)),
		zap.Stringer("at", at))
	return true
}
