package session

import (
	"fmt"
	"time"

	"chesslink/internal/domain"
	"chesslink/internal/game"
)

// State is the lifecycle phase of a session.
type State int

const (
	Idle State = iota
	Listening
	Dialing
	Handshaking
	Synchronized
	Degraded
	Closed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Dialing:
		return "dialing"
	case Handshaking:
		return "handshaking"
	case Synchronized:
		return "synchronized"
	case Degraded:
		return "degraded"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Role distinguishes the side that listened from the side that dialed.
type Role int

const (
	Host Role = iota
	Joiner
)

func (r Role) String() string {
	if r == Joiner {
		return "joiner"
	}
	return "host"
}

// Color maps the role to the side it plays: the host is white.
func (r Role) Color() game.Color {
	if r == Joiner {
		return game.Black
	}
	return game.White
}

// valid enumerates permitted transitions. Closed and Failed are absorbing.
var valid = map[State][]State{
	Idle:         {Listening, Dialing},
	Listening:    {Handshaking, Closed},
	Dialing:      {Handshaking, Closed},
	Handshaking:  {Synchronized, Failed, Closed},
	Synchronized: {Degraded, Closed, Failed},
	Degraded:     {Handshaking, Synchronized, Closed, Failed},
}

// ErrInvalidTransition reports a transition outside the table. It indicates
// a bug in the caller, not a recoverable condition.
type ErrInvalidTransition struct {
	From, To State
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid session transition %s -> %s", e.From, e.To)
}

// Session is one logical connection lifetime between two peers, independent
// of the underlying socket's lifetime. It is owned and mutated exclusively
// by the core's session loop.
type Session struct {
	state        State
	Role         Role
	Peer         domain.PeerIdentity
	SentSeq      uint64 // last sequence number we proposed
	RecvSeq      uint64 // last sequence number accepted from the peer
	AckedSeq     uint64 // last of our proposals the peer acknowledged
	LastActivity time.Time
}

// New returns an idle session for the given role.
func New(role Role) *Session {
	return &Session{state: Idle, Role: role, LastActivity: time.Now()}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Transition moves the machine to next, failing on anything outside the
// transition table.
func (s *Session) Transition(next State) error {
	for _, allowed := range valid[s.state] {
		if allowed == next {
			s.state = next
			s.Touch()
			return nil
		}
	}
	return &ErrInvalidTransition{From: s.state, To: next}
}

// Reset returns the session to Idle from any state and clears the peer
// binding and counters. The game record is untouched: board reset and
// connection reset are independent operations.
func (s *Session) Reset() {
	s.state = Idle
	s.Peer = domain.PeerIdentity{}
	s.SentSeq, s.RecvSeq, s.AckedSeq = 0, 0, 0
	s.Touch()
}

// Touch records activity for idle/heartbeat accounting.
func (s *Session) Touch() { s.LastActivity = time.Now() }

// IdleFor reports how long the session has been silent.
func (s *Session) IdleFor() time.Duration { return time.Since(s.LastActivity) }
