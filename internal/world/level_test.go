package world

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
)

func TestSetEntityEvicts(t *testing.T) {
	l := NewLevel(nil)
	first, evicted := l.SetEntity(NewEntity(grid.P(1, 1), data.Box))
	if evicted != nil {
		t.Fatal("empty cell should not evict")
	}
	second, evicted := l.SetEntity(NewEntity(grid.P(1, 1), data.Cat))
	if evicted == nil || evicted.Type != data.Box {
		t.Fatalf("expected box evicted, got %+v", evicted)
	}
	if _, ok := l.Get(first); ok {
		t.Error("evicted handle still resolves")
	}
	if id, e, ok := l.EntityAt(grid.P(1, 1)); !ok || id != second || e.Type != data.Cat {
		t.Errorf("EntityAt = %v %+v %v", id, e, ok)
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestRemoveEntity(t *testing.T) {
	l := NewLevel(nil)
	l.SetEntity(NewEntity(grid.P(0, 0), data.Wall))
	if got := l.RemoveEntity(grid.P(5, 5)); got != nil {
		t.Errorf("removing empty cell returned %+v", got)
	}
	got := l.RemoveEntity(grid.P(0, 0))
	if got == nil || got.Type != data.Wall {
		t.Fatalf("RemoveEntity = %+v", got)
	}
	if !l.IsEmpty(grid.P(0, 0)) || l.Len() != 0 {
		t.Error("cell should be empty after removal")
	}
}

func TestSetEntityCopiesController(t *testing.T) {
	l := NewLevel(nil)
	e := NewEntity(grid.P(0, 0), data.Dog)
	e.Controller.Chain = &Chain{Origin: grid.P(0, 0), Distance: 2}
	id, _ := l.SetEntity(e)
	e.Controller.Chain.Distance = 9

	stored, _ := l.Get(id)
	if stored.Controller.Chain.Distance != 2 {
		t.Error("level must keep its own copy of the controller")
	}
}

func TestEntitiesSnapshotOrder(t *testing.T) {
	l := NewLevel(nil)
	l.SetEntity(NewEntity(grid.P(2, 0), data.Box))
	l.SetEntity(NewEntity(grid.P(0, 3), data.Wall))
	l.SetEntity(NewEntity(grid.P(-1, 0), data.Cheese))

	views := l.Entities()
	want := []grid.Pos{grid.P(0, 3), grid.P(-1, 0), grid.P(2, 0)}
	if len(views) != len(want) {
		t.Fatalf("len = %d", len(views))
	}
	for i, v := range views {
		if v.Pos != want[i] {
			t.Errorf("views[%d] at %s, want %s", i, v.Pos, want[i])
		}
	}
	// mutating the snapshot leaves the level alone
	views[0].Pos = grid.P(9, 9)
	if l.IsEmpty(grid.P(0, 3)) {
		t.Error("snapshot shares state with the level")
	}
}

func TestValidateSharedCell(t *testing.T) {
	l := NewLevel(nil)
	a, _ := l.SetEntity(NewEntity(grid.P(0, 0), data.Cat))
	l.SetEntity(NewEntity(grid.P(1, 0), data.Mouse))
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	l.MoveEntity(a, grid.P(1, 0))
	err := l.Validate()
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if id, _, _ := l.EntityAt(grid.P(1, 0)); id != a {
		t.Error("shared cell lookup should pick the lowest handle")
	}
}

func TestState(t *testing.T) {
	l := NewLevel(nil)
	if l.State() != Loss {
		t.Error("empty level should be a loss")
	}

	cat := NewEntity(grid.P(0, 0), data.Cat)
	cat.Controller = NewPlayerController()
	l.SetEntity(cat)
	if l.State() != Win {
		t.Error("cat player with no mice left should win")
	}

	l.SetEntity(NewEntity(grid.P(3, 0), data.Mouse))
	if l.State() != Playing {
		t.Error("mouse remaining should keep playing")
	}
}

func TestStateWithoutAttractors(t *testing.T) {
	l := NewLevel(nil)
	box := NewEntity(grid.P(0, 0), data.Box)
	box.Controller = NewPlayerController()
	l.SetEntity(box)
	if l.State() != Playing {
		t.Error("player type without attractors never wins")
	}
}

const sampleLevel = `{
  "name": "Kitchen",
  "next_level": "cellar",
  "entities": [
    {"position": {"x": 0, "y": 0}, "entity_type": "cat",
     "controller": {"next_move": "wait", "controller_type": "player"}},
    {"position": {"x": 2, "y": 0}, "entity_type": "mouse",
     "controller": {"next_move": "wait", "controller_type": "mouse",
                    "last_target_pos": {"x": 4, "y": 1}}},
    {"position": {"x": 0, "y": 3}, "entity_type": "dog",
     "controller": {"next_move": "wait", "controller_type": "dog",
                    "chain": {"origin": {"x": 0, "y": 3}, "distance": 2}}},
    {"position": {"x": 1, "y": 1}, "entity_type": "box"}
  ]
}`

func TestLevelFileRoundTrip(t *testing.T) {
	l, err := Decode(strings.NewReader(sampleLevel), FormatJSON, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if l.Name != "Kitchen" || l.NextLevel != "cellar" || l.Len() != 4 {
		t.Fatalf("decoded %q %q %d", l.Name, l.NextLevel, l.Len())
	}

	for _, f := range []Format{FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		if err := Encode(&buf, l, f); err != nil {
			t.Fatalf("Encode %s: %v", f, err)
		}
		back, err := Decode(&buf, f, nil)
		if err != nil {
			t.Fatalf("Decode %s: %v", f, err)
		}
		a, b := l.Entities(), back.Entities()
		if len(a) != len(b) {
			t.Fatalf("%s: %d entities, want %d", f, len(b), len(a))
		}
		for i := range a {
			if a[i].Pos != b[i].Pos || a[i].Type != b[i].Type {
				t.Errorf("%s: entity %d = %s %s, want %s %s", f, i, b[i].Type, b[i].Pos, a[i].Type, a[i].Pos)
			}
		}
	}

	_, dog, _ := l.EntityAt(grid.P(0, 3))
	if leash := dog.Controller.Leash(); leash == nil || leash.Distance != 2 {
		t.Errorf("dog chain lost: %+v", leash)
	}
	_, mouse, _ := l.EntityAt(grid.P(2, 0))
	if mouse.Controller.LastTargetPos == nil || *mouse.Controller.LastTargetPos != grid.P(4, 1) {
		t.Error("target memory lost")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"syntax":     `{"entities": [`,
		"type":       `{"entities": [{"position": {"x": 0, "y": 0}, "entity_type": "dragon"}]}`,
		"controller": `{"entities": [{"position": {"x": 0, "y": 0}, "entity_type": "cat", "controller": {"controller_type": "wizard"}}]}`,
		"move":       `{"entities": [{"position": {"x": 0, "y": 0}, "entity_type": "cat", "controller": {"controller_type": "cat", "next_move": "jump"}}]}`,
		"chain":      `{"entities": [{"position": {"x": 0, "y": 0}, "entity_type": "cat", "controller": {"controller_type": "cat", "chain": {"origin": {"x": 0, "y": 0}, "distance": 1}}}]}`,
	}
	for name, raw := range cases {
		_, err := Decode(strings.NewReader(raw), FormatJSON, nil)
		if !errors.Is(err, ErrMalformedLevel) {
			t.Errorf("%s: expected ErrMalformedLevel, got %v", name, err)
		}
	}
}

func TestDecodeDuplicatePositions(t *testing.T) {
	raw := `{"entities": [
		{"position": {"x": 1, "y": 1}, "entity_type": "box"},
		{"position": {"x": 1, "y": 1}, "entity_type": "wall"}
	]}`
	l, err := Decode(strings.NewReader(raw), FormatJSON, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
	if _, e, _ := l.EntityAt(grid.P(1, 1)); e.Type != data.Wall {
		t.Error("later record should win")
	}
	if d := l.DuplicatePositions(); len(d) != 1 || d[0] != grid.P(1, 1) {
		t.Errorf("DuplicatePositions = %v", d)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	l, err := Decode(strings.NewReader(sampleLevel), FormatJSON, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "kitchen.yaml")
	if err := SaveFile(path, l); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "entity_type: cat") {
		t.Errorf("expected yaml output, got:\n%s", raw)
	}
	back, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if back.Path != path || back.Len() != l.Len() {
		t.Errorf("loaded %q with %d entities", back.Path, back.Len())
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json":    FormatJSON,
		"a.YAML":    FormatYAML,
		"dir/b.yml": FormatYAML,
		"no_ext":    FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}
