// Package rules provides rule-engine implementations of game.Engine.
//
// Minimal is a small built-in engine for local play and tests. It enforces
// board geometry, piece movement shapes and side-to-move ownership, but it
// does not implement check, castling or en passant; embedders wanting full
// chess legality plug in a complete engine behind the same interface.
package rules
