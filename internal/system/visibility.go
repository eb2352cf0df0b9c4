package system

import (
	"math"

	"github.com/pawsteps/engine/internal/core/grid"
	"github.com/pawsteps/engine/internal/world"
)

// CanSee walks the segment from observer to target in distance equal steps.
// Every intermediate sample needs at least one empty candidate cell. On
// success it returns the first step off the observer (the unit vector when
// the target is adjacent). Nothing is visible at distance 0 or beyond radius.
func CanSee(l *world.Level, observer, target grid.Pos, radius int32) (grid.Pos, bool) {
	distance := grid.Distance(observer, target)
	if distance > radius || distance == 0 {
		return grid.Pos{}, false
	}
	delta := target.Sub(observer)
	if distance == 1 {
		return delta, true
	}

	var dir grid.Pos
	ox, oy := float64(observer.X), float64(observer.Y)
	dx, dy := float64(delta.X), float64(delta.Y)
	for i := int32(1); i < distance; i++ {
		f := float64(i) / float64(distance)
		clear := false
		for _, cell := range candidateCells(ox+dx*f, oy+dy*f, delta) {
			if l.IsEmpty(cell) {
				clear = true
				if i == 1 {
					dir = cell.Sub(observer)
				}
				break
			}
		}
		if !clear {
			return grid.Pos{}, false
		}
	}
	return dir, true
}

// candidateCells returns the grid cells a sample point may pass through.
// A point on a half-integer corner straddles two cells; the pair is picked
// by the slope of the line so it follows the segment rather than crossing it.
func candidateCells(x, y float64, delta grid.Pos) []grid.Pos {
	_, fx := math.Modf(x)
	_, fy := math.Modf(y)
	if math.Abs(fx) == 0.5 && math.Abs(fy) == 0.5 {
		if int64(delta.X)*int64(delta.Y) > 0 {
			return []grid.Pos{
				{X: int32(math.Ceil(x)), Y: int32(math.Floor(y))},
				{X: int32(math.Floor(x)), Y: int32(math.Ceil(y))},
			}
		}
		return []grid.Pos{
			{X: int32(math.Ceil(x)), Y: int32(math.Ceil(y))},
			{X: int32(math.Floor(x)), Y: int32(math.Floor(y))},
		}
	}
	// math.Round rounds half away from zero
	return []grid.Pos{{X: int32(math.Round(x)), Y: int32(math.Round(y))}}
}
