package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Relation is the static behaviour row for one EntityType.
// Relations are directed: Enemies lists what this type flees from,
// Attractors what it seeks and removes on contact.
type Relation struct {
	Enemies    []EntityType
	Attractors []EntityType
	Property   Property
}

// RelationTable is a total lookup table indexed by EntityType.
type RelationTable struct {
	rows [entityTypeCount]Relation
}

// DefaultRelations returns the built-in table.
func DefaultRelations() *RelationTable {
	t := &RelationTable{}
	t.rows[Cat] = Relation{Enemies: []EntityType{Dog}, Attractors: []EntityType{Mouse}}
	t.rows[Dog] = Relation{Attractors: []EntityType{Cat, Bone}}
	t.rows[Mouse] = Relation{Enemies: []EntityType{Cat}, Attractors: []EntityType{Cheese}}
	for _, c := range []EntityType{Bush, Doghouse, Fence, Wall, Water} {
		t.rows[c].Property = PropCollidable
	}
	for _, p := range []EntityType{Box, Cheese} {
		t.rows[p].Property = PropPushable
	}
	return t
}

// Enemies returns the types t flees from. The slice must not be modified.
func (r *RelationTable) Enemies(t EntityType) []EntityType {
	if !t.Valid() {
		return nil
	}
	return r.rows[t].Enemies
}

// Attractors returns the types t seeks and consumes. The slice must not be modified.
func (r *RelationTable) Attractors(t EntityType) []EntityType {
	if !t.Valid() {
		return nil
	}
	return r.rows[t].Attractors
}

func (r *RelationTable) Property(t EntityType) Property {
	if !t.Valid() {
		return PropNone
	}
	return r.rows[t].Property
}

// IsEnemy reports whether t flees from other.
func (r *RelationTable) IsEnemy(t, other EntityType) bool {
	return contains(r.Enemies(t), other)
}

// Attracts reports whether t seeks and consumes other.
func (r *RelationTable) Attracts(t, other EntityType) bool {
	return contains(r.Attractors(t), other)
}

func (r *RelationTable) IsPushable(t EntityType) bool {
	return r.Property(t) == PropPushable
}

func contains(list []EntityType, t EntityType) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}

// ── YAML overlay ──

type relationEntry struct {
	Type       string   `yaml:"type"`
	Enemies    []string `yaml:"enemies"`
	Attractors []string `yaml:"attractors"`
	Property   string   `yaml:"property"`
}

type relationFile struct {
	Relations []relationEntry `yaml:"relations"`
}

// LoadRelationTable loads relations.yaml and overlays it on the defaults.
// Types the file does not mention keep their default row.
func LoadRelationTable(path string) (*RelationTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read relations: %w", err)
	}
	return ParseRelationTable(raw)
}

// ParseRelationTable is LoadRelationTable for in-memory YAML.
func ParseRelationTable(raw []byte) (*RelationTable, error) {
	var f relationFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse relations: %w", err)
	}
	t := DefaultRelations()
	for i, e := range f.Relations {
		typ, err := ParseEntityType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("relations[%d]: %w", i, err)
		}
		enemies, err := parseTypeList(e.Enemies)
		if err != nil {
			return nil, fmt.Errorf("relations[%d] %s enemies: %w", i, typ, err)
		}
		attractors, err := parseTypeList(e.Attractors)
		if err != nil {
			return nil, fmt.Errorf("relations[%d] %s attractors: %w", i, typ, err)
		}
		prop, err := ParseProperty(e.Property)
		if err != nil {
			return nil, fmt.Errorf("relations[%d] %s: %w", i, typ, err)
		}
		t.rows[typ] = Relation{Enemies: enemies, Attractors: attractors, Property: prop}
	}
	return t, nil
}

func parseTypeList(names []string) ([]EntityType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]EntityType, 0, len(names))
	for _, n := range names {
		t, err := ParseEntityType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Count returns the number of types with at least one relation or a property.
func (r *RelationTable) Count() int {
	n := 0
	for _, row := range r.rows {
		if len(row.Enemies) > 0 || len(row.Attractors) > 0 || row.Property != PropNone {
			n++
		}
	}
	return n
}
