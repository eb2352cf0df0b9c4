package data

import (
	"fmt"
	"strings"
)

// EntityType is the closed set of things that can stand on a cell.
type EntityType uint8

const (
	Bush EntityType = iota
	Cat
	Dog
	Mouse
	Doghouse
	Box
	Cheese
	Bone
	Fence
	Wall
	Water

	entityTypeCount
)

var entityTypeNames = [entityTypeCount]string{
	Bush:     "bush",
	Cat:      "cat",
	Dog:      "dog",
	Mouse:    "mouse",
	Doghouse: "doghouse",
	Box:      "box",
	Cheese:   "cheese",
	Bone:     "bone",
	Fence:    "fence",
	Wall:     "wall",
	Water:    "water",
}

// AllEntityTypes lists every type in declaration order.
func AllEntityTypes() []EntityType {
	out := make([]EntityType, entityTypeCount)
	for i := range out {
		out[i] = EntityType(i)
	}
	return out
}

func (t EntityType) Valid() bool { return t < entityTypeCount }

func (t EntityType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("entity_type(%d)", uint8(t))
	}
	return entityTypeNames[t]
}

// ParseEntityType maps a case-insensitive name to its EntityType.
func ParseEntityType(s string) (EntityType, error) {
	for i, n := range entityTypeNames {
		if strings.EqualFold(n, s) {
			return EntityType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity type %q", s)
}

func (t EntityType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid entity type %d", uint8(t))
	}
	return []byte(entityTypeNames[t]), nil
}

func (t *EntityType) UnmarshalText(b []byte) error {
	v, err := ParseEntityType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Property is the physical behaviour of a type when something walks into it.
type Property uint8

const (
	PropNone       Property = iota // can be walked through, stacked on, consumed
	PropCollidable                 // blocks movement
	PropPushable                   // shoved one cell along the push direction
)

var propertyNames = [...]string{"none", "collidable", "pushable"}

func (p Property) String() string {
	if int(p) >= len(propertyNames) {
		return fmt.Sprintf("property(%d)", uint8(p))
	}
	return propertyNames[p]
}

func ParseProperty(s string) (Property, error) {
	if s == "" {
		return PropNone, nil
	}
	for i, n := range propertyNames {
		if strings.EqualFold(n, s) {
			return Property(i), nil
		}
	}
	return PropNone, fmt.Errorf("unknown property %q", s)
}
