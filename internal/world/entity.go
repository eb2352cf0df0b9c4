package world

import (
	"fmt"
	"strings"

	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
)

// Entity is one simulated object on the grid.
// Entities without a Controller are immobile scenery.
type Entity struct {
	Pos        grid.Pos
	Type       data.EntityType
	Controller *Controller
}

// Clone returns a deep copy (controller, chain and target memory included).
func (e Entity) Clone() Entity {
	if e.Controller != nil {
		c := e.Controller.clone()
		e.Controller = &c
	}
	return e
}

// IsPlayer reports whether the entity is driven by the external player move.
func (e *Entity) IsPlayer() bool {
	return e.Controller != nil && e.Controller.Type == ControllerPlayer
}

// ControllerType discriminates who chooses an entity's next move.
type ControllerType uint8

const (
	ControllerPlayer ControllerType = iota
	ControllerCat                   // chases mice, flees dogs
	ControllerDog                   // chases cats; leashed guard when Chain is set
	ControllerMouse                 // flees cats, seeks cheese
)

var controllerNames = [...]string{"player", "cat", "dog", "mouse"}

func (t ControllerType) String() string {
	if int(t) >= len(controllerNames) {
		return fmt.Sprintf("controller(%d)", uint8(t))
	}
	return controllerNames[t]
}

func ParseControllerType(s string) (ControllerType, error) {
	for i, n := range controllerNames {
		if strings.EqualFold(n, s) {
			return ControllerType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown controller type %q", s)
}

// Chain binds a guard to stay within Distance (taxicab) of Origin.
type Chain struct {
	Origin   grid.Pos
	Distance int32
}

// Allows reports whether pos is inside the leash.
func (c *Chain) Allows(pos grid.Pos) bool {
	return grid.Distance(pos, c.Origin) <= c.Distance
}

// Controller is the per-entity decision state.
type Controller struct {
	NextMove grid.Move
	Type     ControllerType
	Chain    *Chain // only honoured for ControllerDog

	// LastTargetPos is where an attractor was last seen. Written by the
	// decision phase, cleared on capture or when the trail goes cold.
	LastTargetPos *grid.Pos
}

// Leash returns the active chain, or nil when the controller is unleashed.
func (c *Controller) Leash() *Chain {
	if c == nil || c.Type != ControllerDog {
		return nil
	}
	return c.Chain
}

func (c *Controller) RememberTarget(p grid.Pos) {
	c.LastTargetPos = &p
}

func (c *Controller) ForgetTarget() {
	c.LastTargetPos = nil
}

func (c Controller) clone() Controller {
	if c.Chain != nil {
		ch := *c.Chain
		c.Chain = &ch
	}
	if c.LastTargetPos != nil {
		p := *c.LastTargetPos
		c.LastTargetPos = &p
	}
	return c
}

// NewPlayerController returns a fresh player controller.
func NewPlayerController() *Controller {
	return &Controller{Type: ControllerPlayer}
}

// DefaultController returns the controller a newly placed entity of type t
// gets, or nil for scenery.
func DefaultController(t data.EntityType) *Controller {
	switch t {
	case data.Cat:
		return &Controller{Type: ControllerCat}
	case data.Dog:
		return &Controller{Type: ControllerDog}
	case data.Mouse:
		return &Controller{Type: ControllerMouse}
	}
	return nil
}

// NewEntity builds an entity with its default controller.
func NewEntity(pos grid.Pos, t data.EntityType) Entity {
	return Entity{Pos: pos, Type: t, Controller: DefaultController(t)}
}
