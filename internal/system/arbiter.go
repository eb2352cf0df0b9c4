package system

import (
	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/grid"
	coresys "github.com/pawsteps/engine/internal/core/system"
	"github.com/pawsteps/engine/internal/world"
)

// HeadOnSystem freezes entities that intend to walk through each other.
// If one side attracts the other, only the prey is frozen so the hunter can
// step onto it; otherwise both stand still. Pairs are judged against the
// intents as decided, so one freeze never hides another pair.
// Phase 1 (Arbiter), registered only in freeze mode.
type HeadOnSystem struct {
	level *world.Level
	deps  *Deps
}

func NewHeadOnSystem(l *world.Level, deps *Deps) *HeadOnSystem {
	return &HeadOnSystem{level: l, deps: deps}
}

func (s *HeadOnSystem) Phase() coresys.Phase { return coresys.PhaseArbiter }

func (s *HeadOnSystem) Update(_ coresys.Input) {
	rel := s.level.Relations()
	intents := make(map[ecs.EntityID]grid.Move)
	ids := s.level.IDs()
	for _, id := range ids {
		e, _ := s.level.Get(id)
		if e.Controller != nil && e.Controller.NextMove != grid.Wait {
			intents[id] = e.Controller.NextMove
		}
	}

	var frozen []ecs.EntityID
	for _, a := range ids {
		ma, ok := intents[a]
		if !ok {
			continue
		}
		ea, _ := s.level.Get(a)
		b, eb, ok := s.level.EntityAt(ea.Pos.Add(ma.Dir()))
		if !ok || b <= a {
			continue // each pair once, from the smaller id
		}
		mb, ok := intents[b]
		if !ok || mb.Dir() != ma.Dir().Neg() {
			continue
		}
		switch {
		case rel.Attracts(ea.Type, eb.Type):
			frozen = append(frozen, b)
		case rel.Attracts(eb.Type, ea.Type):
			frozen = append(frozen, a)
		default:
			frozen = append(frozen, a, b)
		}
	}

	for _, id := range frozen {
		e, _ := s.level.Get(id)
		e.Controller.NextMove = grid.Wait
		s.deps.Log.Debug("head-on freeze", zap.Uint64("entity", uint64(id)), zap.Stringer("pos", e.Pos))
	}
}
