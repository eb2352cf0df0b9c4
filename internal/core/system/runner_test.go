package system

import "testing"

type recordSystem struct {
	phase Phase
	name  string
	log   *[]string
}

func (s recordSystem) Phase() Phase   { return s.phase }
func (s recordSystem) Update(_ Input) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordSystem{PhaseResolve, "resolve", &log})
	r.Register(recordSystem{PhaseDecide, "decide", &log})
	r.Register(recordSystem{PhaseMove, "move", &log})
	r.Register(recordSystem{PhaseDecide, "decide2", &log})

	r.Turn(Input{Turn: 1})

	want := []string{"decide", "decide2", "move", "resolve"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, log[i], want[i])
		}
	}
}

func TestRunPhaseOnlyRunsMatching(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordSystem{PhaseDecide, "decide", &log})
	r.Register(recordSystem{PhaseMove, "move", &log})

	r.RunPhase(PhaseMove, Input{})
	if len(log) != 1 || log[0] != "move" {
		t.Errorf("RunPhase ran %v", log)
	}
}

func TestRegisterUnknownPhasePanics(t *testing.T) {
	var log []string
	r := NewRunner()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown phase")
		}
		if r.Len() != 0 {
			t.Errorf("Len = %d after failed register", r.Len())
		}
	}()
	r.Register(recordSystem{Phase(42), "bogus", &log})
}
