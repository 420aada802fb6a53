// Package exchange defines the move-exchange messages and the rules for
// accepting them: one move per turn, sequence numbers strictly in order, and
// fail-closed reconciliation after a disconnect.
//
// Messages travel as a kind byte plus JSON payload inside the encrypted
// channel. Ordering disputes are resolved here; the layers above only ever
// see moves in sequence order.
package exchange
