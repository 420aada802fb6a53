package app

import "log/slog"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string // config directory, e.g. $HOME/.chesslink
	Passphrase string // unlocks the identity and game stores
	Port       int    // listen/dial port override; 0 keeps the saved setting
	PlayerName string // display name override; empty keeps the saved setting
	Logger     *slog.Logger
}
