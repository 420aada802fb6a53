// Package session tracks the connection lifecycle and turn bookkeeping for
// one peer link.
//
// The state machine is Idle → Listening|Dialing → Handshaking → Synchronized
// → {Degraded, Closed}, with Closed and Failed absorbing. A session owns its
// counters and peer identity; it never owns the game record, so resetting a
// connection leaves the board alone.
package session
