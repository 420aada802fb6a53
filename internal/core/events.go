package core

import (
	"chesslink/internal/game"
	"chesslink/internal/session"
)

// Event is delivered to the presentation layer in the order established by
// the move-exchange protocol. Consumers receive events; they never mutate
// core state directly.
type Event interface{ isEvent() }

// MoveApplied reports a move committed to the game record, either our own
// (after the peer acknowledged it) or the peer's.
type MoveApplied struct {
	Move game.Move
	By   game.Color
}

// StatusChanged reports a change in the game-ending condition.
type StatusChanged struct {
	Status game.Status
}

// ConnectionStateChanged reports a session lifecycle transition.
type ConnectionStateChanged struct {
	State session.State
}

// SyncConflict reports divergent move histories. The session has moved to
// Failed; only an explicit new game or manual resolution recovers.
type SyncConflict struct {
	Detail string
}

// SaveFailed reports a persistence error. The in-memory game record stays
// authoritative until the next successful save.
type SaveFailed struct {
	Err error
}

func (MoveApplied) isEvent()            {}
func (StatusChanged) isEvent()          {}
func (ConnectionStateChanged) isEvent() {}
func (SyncConflict) isEvent()           {}
func (SaveFailed) isEvent()             {}
