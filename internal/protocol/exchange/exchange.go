package exchange

import (
	"bytes"
	"fmt"

	"chesslink/internal/domain"
	"chesslink/internal/game"
)

// ValidateProposal applies the protocol-level acceptance rules for an
// inbound move: the sequence number must be exactly the expected next one
// and the mover must own the turn by move-count parity. Rule legality is the
// engine's concern and is checked separately by the caller.
func ValidateProposal(rec *game.GameRecord, senderColor game.Color, m game.Move) error {
	if m.Seq != rec.NextSeq() {
		return fmt.Errorf("%w: proposal seq %d, expected %d", domain.ErrProtocol, m.Seq, rec.NextSeq())
	}
	if rec.SideToMove() != senderColor {
		return fmt.Errorf("%w: %s moved on %s's turn", domain.ErrProtocol, senderColor, rec.SideToMove())
	}
	return nil
}

// CheckDigest verifies that our history up to req.LastKnownSeq matches the
// requester's. A mismatch is a split brain: both sides applied different
// moves at the same sequence number, and silent reconciliation would rewrite
// an already-communicated game, so the protocol fails closed.
func CheckDigest(rec *game.GameRecord, req ResyncRequest) error {
	if req.LastKnownSeq > rec.LastSeq() {
		// The peer is ahead of us; divergence on the shared prefix will
		// surface when its response suffix reaches Reconcile.
		return nil
	}
	local := rec.Digest(req.LastKnownSeq)
	if !bytes.Equal(local[:], req.Digest) {
		return fmt.Errorf("%w: digests differ at seq %d", domain.ErrSyncConflict, req.LastKnownSeq)
	}
	return nil
}

// Reconcile applies a resync suffix to rec. The suffix must continue exactly
// from rec's last sequence; a move that collides with an already-applied
// sequence but differs from it is a conflict.
func Reconcile(e game.Engine, rec *game.GameRecord, moves []game.Move) (applied []game.Move, err error) {
	for _, m := range moves {
		if m.Seq == 0 {
			return applied, fmt.Errorf("%w: resync suffix carries seq 0", domain.ErrProtocol)
		}
		if m.Seq <= rec.LastSeq() {
			have := rec.Moves[m.Seq-1]
			if have.UCI() != m.UCI() {
				return applied, fmt.Errorf("%w: seq %d is %s here, %s on the peer", domain.ErrSyncConflict, m.Seq, have, m)
			}
			continue // duplicate of a move we already hold
		}
		if m.Seq != rec.NextSeq() {
			return applied, fmt.Errorf("%w: resync suffix has a gap at seq %d", domain.ErrSyncConflict, m.Seq)
		}
		if err := rec.Apply(e, m); err != nil {
			return applied, fmt.Errorf("%w: resync replay failed at seq %d: %v", domain.ErrSyncConflict, m.Seq, err)
		}
		applied = append(applied, m)
	}
	return applied, nil
}

// NewResyncRequest captures the requester's view of history.
func NewResyncRequest(rec *game.GameRecord) ResyncRequest {
	d := rec.Digest(rec.LastSeq())
	return ResyncRequest{LastKnownSeq: rec.LastSeq(), Digest: d[:]}
}
