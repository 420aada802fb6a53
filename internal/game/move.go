package game

import (
	"errors"
	"fmt"
)

// Color identifies a side.
type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Other returns the opposing color.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Move is one half-move in UCI coordinates. Seq is assigned by the mover,
// strictly increasing per game, and serves as the ordering and dedup key.
// A Move is immutable once created.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion byte   `json:"promotion,omitempty"` // q, r, b or n; 0 when absent
	Seq       uint64 `json:"seq"`
}

var errBadMove = errors.New("malformed move")

// ParseUCI parses a move in UCI form, e.g. "e2e4" or "e7e8q".
// The sequence number is left unset.
func ParseUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", errBadMove, s)
	}
	from, to := s[:2], s[2:4]
	if !validSquare(from) || !validSquare(to) {
		return Move{}, fmt.Errorf("%w: %q", errBadMove, s)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
			m.Promotion = s[4]
		default:
			return Move{}, fmt.Errorf("%w: bad promotion piece in %q", errBadMove, s)
		}
	}
	return m, nil
}

// UCI renders the move in UCI form.
func (m Move) UCI() string {
	if m.Promotion != 0 {
		return m.From + m.To + string(m.Promotion)
	}
	return m.From + m.To
}

func (m Move) String() string { return m.UCI() }

func validSquare(sq string) bool {
	if len(sq) != 2 {
		return false
	}
	return sq[0] >= 'a' && sq[0] <= 'h' && sq[1] >= '1' && sq[1] <= '8'
}
