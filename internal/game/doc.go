// Package game holds the authoritative shared game state: moves, the ordered
// move history, side-to-move arbitration and deterministic replay.
//
// GameRecord is mutated only through Apply after both the protocol-level turn
// check and the rule-engine legality check have passed. The Engine interface
// models the rule engine as a pure, swappable capability so the core has no
// compile-time coupling to any specific chess-rules implementation.
package game
