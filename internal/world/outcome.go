package world

// LevelState is the outcome of a level at the current turn.
type LevelState uint8

const (
	Playing LevelState = iota
	Win
	Loss
)

func (s LevelState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Win:
		return "win"
	case Loss:
		return "loss"
	}
	return "unknown"
}

// State derives the outcome on demand; nothing is cached.
// No player means Loss. A player whose type has attractors wins once none
// of those types remain anywhere on the grid.
func (l *Level) State() LevelState {
	_, player, ok := l.Player()
	if !ok {
		return Loss
	}
	targets := l.rel.Attractors(player.Type)
	if len(targets) > 0 && !l.AnyOfType(targets) {
		return Win
	}
	return Playing
}
