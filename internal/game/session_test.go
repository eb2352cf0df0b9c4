package game

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pawsteps/engine/internal/core/event"
	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/world"
)

// A player cat next to a mouse boxed in by walls.
const trapLevel = `{
  "name": "Trap",
  "next_level": "Cellar",
  "entities": [
    {"position": {"x": 0, "y": 0}, "entity_type": "cat",
     "controller": {"next_move": "wait", "controller_type": "player"}},
    {"position": {"x": 1, "y": 0}, "entity_type": "mouse",
     "controller": {"next_move": "wait", "controller_type": "mouse"}},
    {"position": {"x": 2, "y": 0}, "entity_type": "wall"},
    {"position": {"x": 1, "y": 1}, "entity_type": "wall"},
    {"position": {"x": 1, "y": -1}, "entity_type": "wall"}
  ]
}`

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Options{Log: zaptest.NewLogger(t)})
	if err := s.LoadLevel(strings.NewReader(trapLevel), world.FormatJSON); err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	return s
}

func TestSessionTurnEventsInOrder(t *testing.T) {
	s := newTestSession(t)

	var seen []string
	var done event.TurnCompleted
	Subscribe(s, func(event.EntityMoved) { seen = append(seen, "moved") })
	Subscribe(s, func(event.EntityConsumed) { seen = append(seen, "consumed") })
	Subscribe(s, func(ev event.TurnCompleted) {
		seen = append(seen, "turn")
		done = ev
	})

	if got := s.Turn(grid.Right); got != world.Win {
		t.Fatalf("state = %s, want win", got)
	}
	if len(seen) < 3 || seen[len(seen)-1] != "turn" {
		t.Fatalf("events = %v", seen)
	}
	if done.Turn != 1 || done.Move != grid.Right || done.State != "win" || done.Entities != 4 {
		t.Errorf("turn completed = %+v", done)
	}
	if s.TurnCount() != 1 {
		t.Errorf("TurnCount = %d", s.TurnCount())
	}
}

func TestSessionPlayStopsWhenDecided(t *testing.T) {
	s := newTestSession(t)
	state, n := s.Play([]grid.Move{grid.Right, grid.Right, grid.Right})
	if state != world.Win || n != 1 {
		t.Errorf("Play = %s after %d turns, want win after 1", state, n)
	}
}

func TestSessionMalformedLoadKeepsLevel(t *testing.T) {
	s := newTestSession(t)
	s.Turn(grid.Wait)

	bad := `{"entities": [{"position": {"x": 0, "y": 0}, "entity_type": "dragon"}]}`
	err := s.LoadLevel(strings.NewReader(bad), world.FormatJSON)
	if !errors.Is(err, world.ErrMalformedLevel) {
		t.Fatalf("err = %v, want ErrMalformedLevel", err)
	}
	if s.Level().Name != "Trap" || len(s.Entities()) != 5 {
		t.Errorf("level replaced: %q with %d entities", s.Level().Name, len(s.Entities()))
	}
	if s.TurnCount() != 1 {
		t.Errorf("turn counter reset on failed load")
	}
}

func TestSessionSaveAndReload(t *testing.T) {
	s := newTestSession(t)
	var buf bytes.Buffer
	if err := s.SaveLevel(&buf, world.FormatYAML); err != nil {
		t.Fatal(err)
	}

	other := NewSession(Options{})
	if err := other.LoadLevel(&buf, world.FormatYAML); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if other.Level().NextLevel != "Cellar" {
		t.Errorf("next level = %q", other.Level().NextLevel)
	}
	a, b := s.Entities(), other.Entities()
	if len(a) != len(b) {
		t.Fatalf("%d entities after reload, want %d", len(b), len(a))
	}
	for i := range a {
		if a[i].Pos != b[i].Pos || a[i].Type != b[i].Type {
			t.Errorf("entity %d: %v %s vs %v %s", i, a[i].Pos, a[i].Type, b[i].Pos, b[i].Type)
		}
	}
	if other.Turn(grid.Right) != world.Win {
		t.Error("reloaded level should play the same")
	}
}

func TestSessionEditing(t *testing.T) {
	s := NewSession(Options{})
	if s.State() != world.Loss {
		t.Errorf("empty level state = %s, want loss", s.State())
	}
	player := world.NewEntity(grid.P(0, 0), data.Cat)
	player.Controller = world.NewPlayerController()
	s.SetEntity(player)
	s.SetEntity(world.NewEntity(grid.P(4, 4), data.Mouse))
	if s.State() != world.Playing {
		t.Errorf("state = %s, want playing", s.State())
	}
	if removed := s.RemoveEntity(grid.P(4, 4)); removed == nil || removed.Type != data.Mouse {
		t.Fatalf("removed = %+v", removed)
	}
	if s.State() != world.Win {
		t.Errorf("state with no mice = %s, want win", s.State())
	}
}

func TestSessionDuplicateWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewSession(Options{Log: zap.New(core)})
	doc := `{"entities": [
	  {"position": {"x": 0, "y": 0}, "entity_type": "box"},
	  {"position": {"x": 0, "y": 0}, "entity_type": "wall"}
	]}`
	if err := s.LoadLevel(strings.NewReader(doc), world.FormatJSON); err != nil {
		t.Fatal(err)
	}
	if n := logs.FilterMessageSnippet("duplicate position").Len(); n != 1 {
		t.Errorf("duplicate warnings = %d, want 1", n)
	}
	views := s.Entities()
	if len(views) != 1 || views[0].Type != data.Wall {
		t.Errorf("entities = %+v", views)
	}
}

// brokenSession stacks two entities on one cell behind the level's back.
func brokenSession(opts Options) *Session {
	s := NewSession(opts)
	player := world.NewEntity(grid.P(1, 0), data.Cat)
	player.Controller = world.NewPlayerController()
	id, _ := s.SetEntity(player)
	s.SetEntity(world.NewEntity(grid.P(0, 0), data.Wall))
	s.Level().MoveEntity(id, grid.P(0, 0))
	return s
}

func TestSessionInvariantLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := brokenSession(Options{Log: zap.New(core)})
	s.Turn(grid.Wait)
	if logs.FilterMessage("occupancy invariant broken").Len() == 0 {
		t.Error("expected an invariant error log")
	}
}

func TestSessionInvariantStrictPanics(t *testing.T) {
	s := brokenSession(Options{Log: zap.NewNop(), Strict: true})
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, world.ErrInvariant) {
			t.Errorf("recovered %v, want ErrInvariant panic", r)
		}
	}()
	s.Turn(grid.Wait)
}
