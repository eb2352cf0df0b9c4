package world

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
)

// ErrMalformedLevel wraps every level decode failure.
var ErrMalformedLevel = errors.New("malformed level")

// Format selects the level file encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("unknown level format %q", s)
}

// --- on-disk document ---

type levelDoc struct {
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	NextLevel string      `json:"next_level,omitempty" yaml:"next_level,omitempty"`
	Entities  []entityDoc `json:"entities" yaml:"entities"`
}

type entityDoc struct {
	Position   grid.Pos       `json:"position" yaml:"position"`
	EntityType string         `json:"entity_type" yaml:"entity_type"`
	Controller *controllerDoc `json:"controller,omitempty" yaml:"controller,omitempty"`
}

type controllerDoc struct {
	NextMove       string    `json:"next_move" yaml:"next_move"`
	LastTargetPos  *grid.Pos `json:"last_target_pos,omitempty" yaml:"last_target_pos,omitempty"`
	ControllerType string    `json:"controller_type" yaml:"controller_type"`
	Chain          *chainDoc `json:"chain,omitempty" yaml:"chain,omitempty"`
}

type chainDoc struct {
	Origin   grid.Pos `json:"origin" yaml:"origin"`
	Distance int32    `json:"distance" yaml:"distance"`
}

// Decode reads a level document. Runtime handles are assigned fresh, in file
// order. A record on an already used cell evicts the earlier one; the cell is
// reported by DuplicatePositions.
func Decode(r io.Reader, f Format, rel *data.RelationTable) (*Level, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	var doc levelDoc
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(raw, &doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLevel, f, err)
	}

	l := NewLevel(rel)
	l.Name = doc.Name
	l.NextLevel = doc.NextLevel
	for i, ed := range doc.Entities {
		e, err := ed.entity()
		if err != nil {
			return nil, fmt.Errorf("%w: entity %d: %v", ErrMalformedLevel, i, err)
		}
		if _, evicted := l.SetEntity(e); evicted != nil {
			l.duplicates = append(l.duplicates, e.Pos)
		}
	}
	return l, nil
}

func (ed entityDoc) entity() (Entity, error) {
	t, err := data.ParseEntityType(ed.EntityType)
	if err != nil {
		return Entity{}, err
	}
	e := Entity{Pos: ed.Position, Type: t}
	if ed.Controller == nil {
		return e, nil
	}
	cd := ed.Controller
	ct, err := ParseControllerType(cd.ControllerType)
	if err != nil {
		return Entity{}, err
	}
	c := &Controller{Type: ct}
	if cd.NextMove != "" {
		if c.NextMove, err = grid.ParseMove(cd.NextMove); err != nil {
			return Entity{}, err
		}
	}
	if cd.LastTargetPos != nil {
		c.RememberTarget(*cd.LastTargetPos)
	}
	if cd.Chain != nil {
		if ct != ControllerDog {
			return Entity{}, fmt.Errorf("chain on %s controller", ct)
		}
		if cd.Chain.Distance < 0 {
			return Entity{}, fmt.Errorf("negative chain distance %d", cd.Chain.Distance)
		}
		c.Chain = &Chain{Origin: cd.Chain.Origin, Distance: cd.Chain.Distance}
	}
	e.Controller = c
	return e, nil
}

// Encode writes the level, top row first.
func Encode(w io.Writer, l *Level, f Format) error {
	doc := levelDoc{Name: l.Name, NextLevel: l.NextLevel}
	views := l.Entities()
	doc.Entities = make([]entityDoc, 0, len(views))
	for _, v := range views {
		ed := entityDoc{Position: v.Pos, EntityType: v.Type.String()}
		if c := v.Controller; c != nil {
			cd := &controllerDoc{
				NextMove:       c.NextMove.String(),
				LastTargetPos:  c.LastTargetPos,
				ControllerType: c.Type.String(),
			}
			if c.Chain != nil {
				cd.Chain = &chainDoc{Origin: c.Chain.Origin, Distance: c.Chain.Distance}
			}
			ed.Controller = cd
		}
		doc.Entities = append(doc.Entities, ed)
	}

	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("encode yaml level: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("encode json level: %w", err)
		}
	}
	return nil
}

// LoadFile decodes a level from disk, picking the format by extension.
func LoadFile(path string, rel *data.RelationTable) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level %s: %w", path, err)
	}
	defer f.Close()

	l, err := Decode(f, FormatFromPath(path), rel)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", path, err)
	}
	l.Path = path
	return l, nil
}

// SaveFile writes a level to disk, picking the format by extension.
func SaveFile(path string, l *Level) error {
	var buf bytes.Buffer
	if err := Encode(&buf, l, FormatFromPath(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write level %s: %w", path, err)
	}
	return nil
}
