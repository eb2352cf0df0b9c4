package grid

import "fmt"

// Pos is an integer grid coordinate. Y grows upward: Up is (0, +1).
type Pos struct {
	X int32 `json:"x" yaml:"x"`
	Y int32 `json:"y" yaml:"y"`
}

func P(x, y int32) Pos { return Pos{X: x, Y: y} }

func (p Pos) Add(o Pos) Pos { return Pos{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Pos) Sub(o Pos) Pos { return Pos{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Pos) Neg() Pos      { return Pos{X: -p.X, Y: -p.Y} }
func (p Pos) IsZero() bool  { return p.X == 0 && p.Y == 0 }

// Dot returns the dot product of two offsets.
func (p Pos) Dot(o Pos) int32 { return p.X*o.X + p.Y*o.Y }

// Perp rotates an offset a quarter turn counter-clockwise.
func (p Pos) Perp() Pos { return Pos{X: -p.Y, Y: p.X} }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Distance is the taxicab distance between two cells.
func Distance(a, b Pos) int32 {
	return abs32(a.X-b.X) + abs32(a.Y-b.Y)
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

// Less orders cells top row first, then left to right.
func Less(a, b Pos) bool {
	if a.Y != b.Y {
		return a.Y > b.Y
	}
	return a.X < b.X
}
