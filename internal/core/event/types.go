package event

import (
	"github.com/pawsteps/engine/internal/core/ecs"
	"github.com/pawsteps/engine/internal/core/grid"
)

// Turn event types.

type EntityMoved struct {
	ID     ecs.EntityID
	From   grid.Pos
	To     grid.Pos
	Pushed bool // moved by another entity's push, not its own intent
}

// EntityConsumed is emitted when an attractor target is removed, either by
// contact during movement or by co-location during resolution.
type EntityConsumed struct {
	Consumer ecs.EntityID
	Victim   ecs.EntityID
	At       grid.Pos
	Phase    string
}

// LeashHeld is emitted when a chained guard's move is refused by its chain.
type LeashHeld struct {
	ID ecs.EntityID
	At grid.Pos
}

type TurnCompleted struct {
	Turn     uint64
	Move     grid.Move
	State    string
	Entities int
}
