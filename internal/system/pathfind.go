package system

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/world"
)

// Pathfind runs a reverse breadth-first search from to over the 8 neighbour
// cells that are empty. When from turns up next to a frontier cell, the
// offset from from to that cell is the next hop toward to. The frontier
// budget is decremented before each expansion and the search stops at zero.
func Pathfind(l *world.Level, from, to grid.Pos, maxSteps int32) (grid.Pos, bool) {
	if from == to {
		return grid.Pos{}, true
	}
	if maxSteps <= 0 {
		return grid.Pos{}, false
	}

	used := mapset.New[grid.Pos]()
	used.Put(to)
	queue := []grid.Pos{to}
	budget := maxSteps

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		budget--
		if budget == 0 {
			break
		}
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				next := grid.Pos{X: pos.X + dx, Y: pos.Y + dy}
				if next == from {
					return pos.Sub(from), true
				}
				if used.Has(next) || !l.IsEmpty(next) {
					continue
				}
				used.Put(next)
				queue = append(queue, next)
			}
		}
	}
	return grid.Pos{}, false
}
