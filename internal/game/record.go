package game

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameRecord is the authoritative shared state: the current position, the
// full ordered move list, side-to-move and game status. The move list is
// append-only; sequence numbers are strictly increasing and never reused.
type GameRecord struct {
	GameID     string   `json:"game_id"`
	Moves      []Move   `json:"moves"`
	Position   Position `json:"position"`
	Status     Status   `json:"status"`
	White      string   `json:"white"`
	Black      string   `json:"black"`
	StartedUTC int64    `json:"started_utc"`
}

// NewGameRecord starts a fresh game at the engine's initial position.
func NewGameRecord(e Engine) *GameRecord {
	return &GameRecord{
		GameID:     uuid.NewString(),
		Position:   e.InitialPosition(),
		Status:     Ongoing,
		White:      "Player 1",
		Black:      "Player 2",
		StartedUTC: time.Now().Unix(),
	}
}

// SideToMove derives the color on move from move-count parity: white moves
// first, then turns alternate deterministically.
func (r *GameRecord) SideToMove() Color {
	if len(r.Moves)%2 == 0 {
		return White
	}
	return Black
}

// LastSeq returns the sequence number of the last applied move, 0 for none.
func (r *GameRecord) LastSeq() uint64 {
	if len(r.Moves) == 0 {
		return 0
	}
	return r.Moves[len(r.Moves)-1].Seq
}

// NextSeq returns the sequence number the next move must carry.
func (r *GameRecord) NextSeq() uint64 { return uint64(len(r.Moves)) + 1 }

// Apply validates m against the engine and appends it. The sequence number
// must be exactly NextSeq. On any failure the record is left untouched.
func (r *GameRecord) Apply(e Engine, m Move) error {
	if m.Seq != r.NextSeq() {
		return fmt.Errorf("move %s: sequence %d, expected %d", m, m.Seq, r.NextSeq())
	}
	if !e.IsLegal(r.Position, m) {
		return fmt.Errorf("move %s is not legal here", m)
	}
	pos, err := e.Apply(r.Position, m)
	if err != nil {
		return err
	}
	r.Moves = append(r.Moves, m)
	r.Position = pos
	r.Status = e.Status(pos)
	return nil
}

// Clone returns a deep copy, used for tentative application of an
// unacknowledged local move.
func (r *GameRecord) Clone() *GameRecord {
	out := *r
	out.Moves = append([]Move(nil), r.Moves...)
	return &out
}

// Replay rebuilds a record from an ordered move list. It is deterministic:
// the same list always yields the same position and status, which makes the
// move list, not the snapshot, the source of truth.
func Replay(e Engine, moves []Move) (*GameRecord, error) {
	rec := NewGameRecord(e)
	for _, m := range moves {
		if err := rec.Apply(e, m); err != nil {
			return nil, fmt.Errorf("replay at seq %d: %w", m.Seq, err)
		}
	}
	return rec, nil
}

// Digest hashes the move list up to and including seq. Two peers with the
// same digest for the same seq hold identical histories up to that point.
func (r *GameRecord) Digest(seq uint64) [32]byte {
	h := sha256.New()
	for _, m := range r.Moves {
		if m.Seq > seq {
			break
		}
		fmt.Fprintf(h, "%d:%s\n", m.Seq, m.UCI())
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// MovesAfter returns the suffix of the move list with Seq > seq.
func (r *GameRecord) MovesAfter(seq uint64) []Move {
	for i, m := range r.Moves {
		if m.Seq > seq {
			return append([]Move(nil), r.Moves[i:]...)
		}
	}
	return nil
}
