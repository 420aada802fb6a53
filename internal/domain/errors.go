package domain

import "errors"

// Error taxonomy shared by the channel, protocol and facade layers. Each
// failure class maps to a well-defined session transition; nothing here is
// ever allowed to crash the process.
var (
	// ErrTransport marks socket-level read/write failures. Recoverable: the
	// session degrades and may resync after a reconnect.
	ErrTransport = errors.New("transport failure")

	// ErrAuthentication marks tampered ciphertext or a replayed counter. The
	// connection is terminated, never silently retried.
	ErrAuthentication = errors.New("message authentication failed")

	// ErrProtocol marks a malformed or oversized frame. The connection is
	// terminated.
	ErrProtocol = errors.New("protocol violation")

	// ErrNotYourTurn is returned to a caller submitting a move out of turn.
	// No state is mutated.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrIllegalMove is returned when the rule engine rejects a local move.
	// No state is mutated.
	ErrIllegalMove = errors.New("illegal move")

	// ErrNotConnected is returned when a move is submitted without a
	// synchronized session.
	ErrNotConnected = errors.New("not connected to a peer")

	// ErrSyncConflict marks divergent move histories discovered during
	// resync. Fatal to the session; requires an explicit new game.
	ErrSyncConflict = errors.New("move histories have diverged")

	// ErrNotFound is returned when no persisted state exists.
	ErrNotFound = errors.New("not found")
)
