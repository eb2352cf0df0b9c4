package system

import (
	"github.com/pawsteps/engine/internal/core/event"
	coresys "github.com/pawsteps/engine/internal/core/system"
	"github.com/pawsteps/engine/internal/world"
)

// ResolutionSystem removes every attractor sharing a cell with an entity
// that is drawn to it. Each entity is judged on its own, so two entities
// may both feed on the same cell. Movement never commits a step onto an
// occupied cell, so this only catches co-location made outside the move
// phase (level edits, direct MoveEntity calls). Phase 3 (Resolve).
type ResolutionSystem struct {
	level *world.Level
	deps  *Deps
}

func NewResolutionSystem(l *world.Level, deps *Deps) *ResolutionSystem {
	return &ResolutionSystem{level: l, deps: deps}
}

func (s *ResolutionSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *ResolutionSystem) Update(_ coresys.Input) {
	rel := s.level.Relations()
	for _, id := range s.level.IDs() {
		e, ok := s.level.Get(id)
		if !ok {
			continue
		}
		occupants := s.level.OccupantsAt(e.Pos)
		if len(occupants) < 2 {
			continue
		}
		for _, oid := range occupants {
			if oid == id {
				continue
			}
			other, ok := s.level.Get(oid)
			if !ok || !rel.Attracts(e.Type, other.Type) {
				continue
			}
			at := other.Pos
			s.level.Remove(oid)
			event.Emit(s.deps.Bus, event.EntityConsumed{Consumer: id, Victim: oid, At: at, Phase: coresys.PhaseResolve.String()})
		}
	}
}
