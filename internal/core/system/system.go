package system

import "github.com/pawsteps/engine/internal/core/grid"

// Phase defines execution ordering within a single turn.
type Phase int

const (
	PhaseDecide  Phase = iota // 0: every controller picks next_move
	PhaseArbiter              // 1: optional intent post-pass (head-on rule)
	PhaseMove                 // 2: resolve moves, pushes, captures
	PhaseResolve              // 3: co-located attractor removal

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseDecide:
		return "decide"
	case PhaseArbiter:
		return "arbiter"
	case PhaseMove:
		return "move"
	case PhaseResolve:
		return "resolve"
	}
	return "unknown"
}

// Input is what the caller supplies for one turn.
type Input struct {
	Turn       uint64
	PlayerMove grid.Move
}

// System is the interface every turn phase implements.
type System interface {
	Phase() Phase
	Update(in Input)
}
