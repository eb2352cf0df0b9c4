package grid

import (
	"fmt"
	"strings"
)

// Move is a single-turn intent. The zero value is Wait.
type Move uint8

const (
	Wait Move = iota
	Up
	Down
	Left
	Right
)

var moveNames = [...]string{"wait", "up", "down", "left", "right"}

var moveDirs = [...]Pos{
	Wait:  {0, 0},
	Up:    {0, 1},
	Down:  {0, -1},
	Left:  {-1, 0},
	Right: {1, 0},
}

// Dir returns the unit offset of the move ((0,0) for Wait).
func (m Move) Dir() Pos {
	if int(m) >= len(moveDirs) {
		return Pos{}
	}
	return moveDirs[m]
}

func (m Move) String() string {
	if int(m) >= len(moveNames) {
		return fmt.Sprintf("move(%d)", uint8(m))
	}
	return moveNames[m]
}

// MoveFromDir maps one of the five exact unit offsets back to a Move.
func MoveFromDir(d Pos) (Move, bool) {
	for m, v := range moveDirs {
		if v == d {
			return Move(m), true
		}
	}
	return Wait, false
}

// ParseMove accepts a full name ("left") or its first letter ("l").
// "w" and "." both mean Wait.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wait", "w", ".", "space":
		return Wait, nil
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return Wait, fmt.Errorf("unknown move %q", s)
}

// ParseMoves reads a move script: either a compact letter run ("RRUW")
// or comma/space separated names ("right, up, wait").
func ParseMoves(s string) ([]Move, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var fields []string
	if strings.ContainsAny(s, ", \t\n") {
		fields = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
	} else {
		for _, r := range s {
			fields = append(fields, string(r))
		}
	}
	moves := make([]Move, 0, len(fields))
	for _, f := range fields {
		m, err := ParseMove(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

func (m Move) MarshalText() ([]byte, error) {
	if int(m) >= len(moveNames) {
		return nil, fmt.Errorf("invalid move %d", uint8(m))
	}
	return []byte(moveNames[m]), nil
}

func (m *Move) UnmarshalText(b []byte) error {
	for i, n := range moveNames {
		if strings.EqualFold(string(b), n) {
			*m = Move(i)
			return nil
		}
	}
	return fmt.Errorf("unknown move %q", string(b))
}

// FormatMoves renders moves as a compact letter run, the form ParseMoves reads.
func FormatMoves(moves []Move) string {
	var b strings.Builder
	for _, m := range moves {
		if int(m) < len(moveNames) {
			b.WriteByte(moveNames[m][0] - 'a' + 'A')
		}
	}
	return b.String()
}
