package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/event"
	"github.com/pawsteps/engine/internal/core/grid"
)

func TestCollectorAggregatesPerTurn(t *testing.T) {
	bus := event.NewBus()
	c := NewCollector(bus, nil, zap.NewNop())
	c.SetLevel("kitchen")

	event.Emit(bus, event.EntityMoved{ID: 1})
	event.Emit(bus, event.EntityMoved{ID: 2, Pushed: true})
	event.Emit(bus, event.LeashHeld{ID: 3})
	event.Emit(bus, event.TurnCompleted{Turn: 1, Move: grid.Right, State: "playing", Entities: 4})
	bus.Flush()

	event.Emit(bus, event.EntityConsumed{Consumer: 1, Victim: 2})
	event.Emit(bus, event.TurnCompleted{Turn: 2, Move: grid.Wait, State: "win", Entities: 3})
	bus.Flush()

	recs := c.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	want0 := TurnRecord{Level: "kitchen", Turn: 1, PlayerMove: "right", Moved: 2, Pushed: 1, Leashed: 1, Entities: 4, State: "playing"}
	if recs[0] != want0 {
		t.Errorf("turn 1 = %+v, want %+v", recs[0], want0)
	}
	want1 := TurnRecord{Level: "kitchen", Turn: 2, PlayerMove: "wait", Consumed: 1, Entities: 3, State: "win"}
	if recs[1] != want1 {
		t.Errorf("turn 2 = %+v, want %+v", recs[1], want1)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if err := om.WriteTurn(TurnRecord{Turn: 1, PlayerMove: "up", State: "playing"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTurn(TurnRecord{Turn: 2, PlayerMove: "down", State: "playing"}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	// reopening appends without a second header
	om, err = NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTurn(TurnRecord{Turn: 3, PlayerMove: "wait", State: "win"}); err != nil {
		t.Fatal(err)
	}
	om.Close()

	raw, err := os.ReadFile(filepath.Join(dir, "turns.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 4 {
		t.Fatalf("turns.csv has %d lines:\n%s", len(lines), raw)
	}
	if lines[0] != "level,turn,player_move,moved,pushed,consumed,leashed,entities,state" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], ",3,wait,") {
		t.Errorf("last row = %q", lines[3])
	}
}

func TestOutputDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v %v", om, err)
	}
	if err := om.WriteTurn(TurnRecord{}); err != nil {
		t.Error("nil manager should swallow writes")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}
