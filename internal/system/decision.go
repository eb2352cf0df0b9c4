package system

import (
	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/grid"
	coresys "github.com/pawsteps/engine/internal/core/system"
	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/scripting"
	"github.com/pawsteps/engine/internal/world"
)

// DecisionSystem fills every controller's NextMove. It reads positions only
// and writes only the deciding entity's own controller, so iteration order
// cannot change the outcome. Phase 0 (Decide).
type DecisionSystem struct {
	level *world.Level
	deps  *Deps
}

func NewDecisionSystem(l *world.Level, deps *Deps) *DecisionSystem {
	return &DecisionSystem{level: l, deps: deps}
}

func (s *DecisionSystem) Phase() coresys.Phase { return coresys.PhaseDecide }

func (s *DecisionSystem) Update(in coresys.Input) {
	s.level.ResetIntents()
	for _, id := range s.level.IDs() {
		e, ok := s.level.Get(id)
		if !ok || e.Controller == nil {
			continue
		}
		if e.IsPlayer() {
			e.Controller.NextMove = in.PlayerMove
			continue
		}
		d := s.decide(id, e)
		m := s.snap(e.Pos, d.dir)
		if s.deps.Scripts != nil {
			m = s.override(id, e, d, m, in.Turn)
		}
		e.Controller.NextMove = m
	}
}

// sighting is a visible entity and the first step toward it.
type sighting struct {
	id   ecs.EntityID
	pos  grid.Pos
	typ  data.EntityType
	dist int32
	dir  grid.Pos
}

type decision struct {
	dir    grid.Pos
	threat *sighting
	target *sighting
}

func (s *DecisionSystem) decide(id ecs.EntityID, e *world.Entity) decision {
	rel := s.level.Relations()
	c := e.Controller

	// 逃離優先於追擊
	if threat, ok := s.nearestVisible(id, e.Pos, rel.Enemies(e.Type)); ok {
		return decision{dir: s.flee(e.Pos, threat), threat: &threat}
	}
	if target, ok := s.nearestVisible(id, e.Pos, rel.Attractors(e.Type)); ok {
		c.RememberTarget(target.pos)
		return decision{dir: target.dir, target: &target}
	}
	if c.LastTargetPos != nil {
		if dir, ok := Pathfind(s.level, e.Pos, *c.LastTargetPos, s.deps.pathfindSteps()); ok && !dir.IsZero() {
			return decision{dir: dir}
		}
		// trail went cold
		c.ForgetTarget()
	}
	return decision{}
}

// nearestVisible returns the closest visible entity of one of types.
// Ties go to the smaller EntityID.
func (s *DecisionSystem) nearestVisible(self ecs.EntityID, from grid.Pos, types []data.EntityType) (sighting, bool) {
	if len(types) == 0 {
		return sighting{}, false
	}
	var best sighting
	found := false
	for _, id := range s.level.IDs() {
		if id == self {
			continue
		}
		other, _ := s.level.Get(id)
		if !typeIn(other.Type, types) {
			continue
		}
		dist := grid.Distance(from, other.Pos)
		if found && dist >= best.dist {
			continue
		}
		dir, ok := CanSee(s.level, from, other.Pos, s.deps.ViewRadius)
		if !ok {
			continue
		}
		best = sighting{id: id, pos: other.Pos, typ: other.Type, dist: dist, dir: dir}
		found = true
	}
	return best, found
}

// flee heads directly away from the threat. If that cell is taken it
// side-steps to the perpendicular on the far side of the threat, and to the
// other perpendicular when that one is taken too.
func (s *DecisionSystem) flee(self grid.Pos, threat sighting) grid.Pos {
	dir := threat.dir.Neg()
	if s.level.IsEmpty(self.Add(dir)) {
		return dir
	}
	side := dir.Perp()
	if side.Dot(self.Sub(threat.pos)) < 0 {
		side = side.Neg()
	}
	if s.level.IsEmpty(self.Add(side)) {
		return side
	}
	return side.Neg()
}

// snap maps a direction vector onto a Move. Unit vectors map directly,
// others go to their dominant axis. A diagonal (from the 8-way pathfinder)
// takes its horizontal part if that cell is free, else its vertical part if
// free, else waits.
func (s *DecisionSystem) snap(from grid.Pos, d grid.Pos) grid.Move {
	if m, ok := grid.MoveFromDir(d); ok {
		return m
	}
	h := grid.Pos{X: sign(d.X)}
	v := grid.Pos{Y: sign(d.Y)}
	ax, ay := abs(d.X), abs(d.Y)
	var m grid.Move
	switch {
	case ax > ay:
		m, _ = grid.MoveFromDir(h)
	case ay > ax:
		m, _ = grid.MoveFromDir(v)
	case s.level.IsEmpty(from.Add(h)):
		m, _ = grid.MoveFromDir(h)
	case s.level.IsEmpty(from.Add(v)):
		m, _ = grid.MoveFromDir(v)
	default:
		m = grid.Wait
	}
	return m
}

// override lets a creature_ai script replace the built-in move.
func (s *DecisionSystem) override(id ecs.EntityID, e *world.Entity, d decision, proposal grid.Move, turn uint64) grid.Move {
	if !s.deps.Scripts.HasCreatureAI() {
		return proposal
	}
	ctx := scripting.CreatureContext{
		EntityID:   uint64(id),
		Type:       e.Type.String(),
		Controller: e.Controller.Type.String(),
		X:          e.Pos.X,
		Y:          e.Pos.Y,
		Turn:       turn,
		Proposal:   proposal.String(),
		Threat:     scriptSighting(d.threat),
		Target:     scriptSighting(d.target),
		Blocked:    make(map[string]bool, 4),
	}
	if mem := e.Controller.LastTargetPos; mem != nil {
		ctx.Memory = &scripting.Sighting{X: mem.X, Y: mem.Y, Dist: grid.Distance(e.Pos, *mem)}
	}
	for _, m := range []grid.Move{grid.Up, grid.Down, grid.Left, grid.Right} {
		ctx.Blocked[m.String()] = !s.level.IsEmpty(e.Pos.Add(m.Dir()))
	}

	name, ok := s.deps.Scripts.CreatureAI(ctx)
	if !ok {
		return proposal
	}
	m, err := grid.ParseMove(name)
	if err != nil {
		s.deps.Log.Warn("creature_ai returned unknown move",
			zap.String("move", name), zap.Uint64("entity", uint64(id)))
		return proposal
	}
	return m
}

func scriptSighting(sg *sighting) *scripting.Sighting {
	if sg == nil {
		return nil
	}
	return &scripting.Sighting{Type: sg.typ.String(), X: sg.pos.X, Y: sg.pos.Y, Dist: sg.dist}
}

func typeIn(t data.EntityType, list []data.EntityType) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}

func sign(n int32) int32 {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
