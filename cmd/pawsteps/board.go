package main

import (
	"strings"

	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/world"
)

var glyphs = map[data.EntityType]byte{
	data.Bush:     '*',
	data.Cat:      'c',
	data.Dog:      'd',
	data.Mouse:    'm',
	data.Doghouse: 'H',
	data.Box:      'B',
	data.Cheese:   'C',
	data.Bone:     'b',
	data.Fence:    '|',
	data.Wall:     '#',
	data.Water:    '~',
}

// renderBoard draws the bounding box of the entities, top row first.
// The player is drawn as '@'.
func renderBoard(views []world.EntityView) string {
	if len(views) == 0 {
		return "  (empty)\n"
	}
	lo, hi := views[0].Pos, views[0].Pos
	cells := make(map[grid.Pos]byte, len(views))
	for _, v := range views {
		lo.X, lo.Y = min(lo.X, v.Pos.X), min(lo.Y, v.Pos.Y)
		hi.X, hi.Y = max(hi.X, v.Pos.X), max(hi.Y, v.Pos.Y)
		g, ok := glyphs[v.Type]
		if !ok {
			g = '?'
		}
		if v.IsPlayer() {
			g = '@'
		}
		if _, taken := cells[v.Pos]; !taken {
			cells[v.Pos] = g
		}
	}

	var b strings.Builder
	for y := hi.Y; y >= lo.Y; y-- {
		b.WriteString("  ")
		for x := lo.X; x <= hi.X; x++ {
			g, ok := cells[grid.P(x, y)]
			if !ok {
				g = '.'
			}
			b.WriteByte(g)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
