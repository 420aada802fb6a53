package game

// Position is an engine-defined encoding of a board position. The core never
// inspects it; it only threads it between Engine calls and persists it as an
// optimisation that can always be rebuilt by replaying the move list.
type Position string

// Status reports game-ending conditions as seen by the rule engine.
type Status int

const (
	Ongoing Status = iota
	Check
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Engine is the rule-engine oracle consumed synchronously by the core.
// Implementations must be pure: the same position and move always produce the
// same result.
type Engine interface {
	// InitialPosition returns the starting position of a new game.
	InitialPosition() Position
	// IsLegal reports whether m is legal in pos.
	IsLegal(pos Position, m Move) bool
	// Apply returns the position after playing m in pos. It fails on moves
	// IsLegal would reject.
	Apply(pos Position, m Move) (Position, error)
	// Status reports the game-ending condition of pos.
	Status(pos Position) Status
}
