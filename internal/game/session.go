package game

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/event"
	"github.com/pawsteps/engine/internal/core/grid"
	coresys "github.com/pawsteps/engine/internal/core/system"
	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/scripting"
	"github.com/pawsteps/engine/internal/system"
	"github.com/pawsteps/engine/internal/world"
)

// Options configures a Session.
type Options struct {
	Log       *zap.Logger
	Relations *data.RelationTable // nil: built-in table
	Scripts   *scripting.Engine   // nil: no Lua hook

	ViewRadius    int32
	PathfindSteps int32
	HeadOn        system.HeadOnMode
	// Strict panics on a broken occupancy invariant instead of logging it.
	Strict bool
}

// Session drives one level turn by turn. Not safe for concurrent use.
type Session struct {
	log    *zap.Logger
	rel    *data.RelationTable
	bus    *event.Bus
	deps   system.Deps
	strict bool

	level  *world.Level
	runner *coresys.Runner
	turn   uint64
}

// NewSession returns a session holding an empty level.
func NewSession(opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	rel := opts.Relations
	if rel == nil {
		rel = data.DefaultRelations()
	}
	if opts.ViewRadius <= 0 {
		opts.ViewRadius = 3
	}
	if opts.HeadOn == "" {
		opts.HeadOn = system.HeadOnResolve
	}
	bus := event.NewBus()
	s := &Session{
		log:    log,
		rel:    rel,
		bus:    bus,
		strict: opts.Strict,
		deps: system.Deps{
			Log:           log,
			Bus:           bus,
			Scripts:       opts.Scripts,
			ViewRadius:    opts.ViewRadius,
			PathfindSteps: opts.PathfindSteps,
			HeadOn:        opts.HeadOn,
		},
	}
	s.SetLevel(world.NewLevel(rel))
	return s
}

// Bus exposes the turn event bus. Events of a turn are dispatched when the
// turn completes.
func (s *Session) Bus() *event.Bus { return s.bus }

// Level returns the live level. Mutate it only between turns.
func (s *Session) Level() *world.Level { return s.level }

// SetLevel replaces the current level and resets the turn counter.
func (s *Session) SetLevel(l *world.Level) {
	s.level = l
	s.runner = coresys.NewRunner()
	system.Register(s.runner, l, &s.deps)
	s.turn = 0
}

// Turn resolves one turn with the given player move and returns the outcome.
func (s *Session) Turn(move grid.Move) world.LevelState {
	s.check("before turn")

	s.turn++
	s.runner.Turn(coresys.Input{Turn: s.turn, PlayerMove: move})
	state := s.level.State()

	event.Emit(s.bus, event.TurnCompleted{
		Turn:     s.turn,
		Move:     move,
		State:    state.String(),
		Entities: s.level.Len(),
	})
	s.bus.Flush()

	s.check("after turn")
	return state
}

// Play runs moves in order and stops early once the level is no longer
// being played. Returns the final state and the number of turns taken.
func (s *Session) Play(moves []grid.Move) (world.LevelState, int) {
	state := s.level.State()
	n := 0
	for _, m := range moves {
		if state != world.Playing {
			break
		}
		state = s.Turn(m)
		n++
	}
	return state, n
}

func (s *Session) check(stage string) {
	err := s.level.Validate()
	if err == nil {
		return
	}
	s.log.Error("occupancy invariant broken",
		zap.String("stage", stage),
		zap.Uint64("turn", s.turn),
		zap.Error(err),
	)
	if s.strict {
		panic(err)
	}
}

func (s *Session) SetEntity(e world.Entity) (ecs.EntityID, *world.Entity) {
	return s.level.SetEntity(e)
}

func (s *Session) RemoveEntity(p grid.Pos) *world.Entity {
	return s.level.RemoveEntity(p)
}

func (s *Session) Entities() []world.EntityView { return s.level.Entities() }

func (s *Session) State() world.LevelState { return s.level.State() }

// TurnCount returns the turns resolved since the level was set.
func (s *Session) TurnCount() uint64 { return s.turn }

// LoadLevel decodes a level and makes it current. On error the previous
// level stays in place.
func (s *Session) LoadLevel(r io.Reader, f world.Format) error {
	l, err := world.Decode(r, f, s.rel)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	s.adopt(l)
	return nil
}

// LoadFile is LoadLevel for a path; the format follows the extension.
func (s *Session) LoadFile(path string) error {
	l, err := world.LoadFile(path, s.rel)
	if err != nil {
		return err
	}
	s.adopt(l)
	return nil
}

func (s *Session) adopt(l *world.Level) {
	for _, p := range l.DuplicatePositions() {
		s.log.Warn("duplicate position in level, earlier entity dropped",
			zap.String("level", l.Name), zap.Stringer("pos", p))
	}
	s.SetLevel(l)
	s.log.Debug("level loaded",
		zap.String("name", l.Name),
		zap.Int("entities", l.Len()),
	)
}

func (s *Session) SaveLevel(w io.Writer, f world.Format) error {
	return world.Encode(w, s.level, f)
}

// Subscribe registers a typed turn event handler on the session's bus.
func Subscribe[T any](s *Session, fn func(T)) {
	event.Subscribe(s.bus, fn)
}
