package system

import (
	"go.uber.org/zap"

	"github.com/pawsteps/engine/internal/core/event"
	coresys "github.com/pawsteps/engine/internal/core/system"
	"github.com/pawsteps/engine/internal/scripting"
	"github.com/pawsteps/engine/internal/world"
)

// HeadOnMode selects how two entities walking into each other are settled.
type HeadOnMode string

const (
	HeadOnResolve HeadOnMode = "resolve" // movement rules alone decide
	HeadOnFreeze  HeadOnMode = "freeze"  // arbiter freezes one or both before movement
)

// Deps holds the collaborators shared by the turn systems.
type Deps struct {
	Log           *zap.Logger
	Bus           *event.Bus        // nil: events dropped
	Scripts       *scripting.Engine // nil: built-in decisions only
	ViewRadius    int32
	PathfindSteps int32 // 0: twice the view radius
	HeadOn        HeadOnMode
}

func (d *Deps) pathfindSteps() int32 {
	if d.PathfindSteps > 0 {
		return d.PathfindSteps
	}
	return d.ViewRadius * 2
}

// Register adds every turn system for l to the runner in phase order.
func Register(r *coresys.Runner, l *world.Level, deps *Deps) {
	r.Register(NewDecisionSystem(l, deps))
	if deps.HeadOn == HeadOnFreeze {
		r.Register(NewHeadOnSystem(l, deps))
	}
	r.Register(NewMovementSystem(l, deps))
	r.Register(NewResolutionSystem(l, deps))
}
