// Package commands defines the chesslink CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Create or rotate the local identity
//   - fingerprint  Print the identity fingerprint
//   - host         Listen for a peer and play as white
//   - join         Connect to a host and play as black
//   - play         Interactive board over an existing saved game
//   - show         Print the saved game without connecting
//   - reset        Tear down the session and optionally start a new game
//
// # Implementation
//
// The root command builds the dependency graph (stores, rules engine,
// settings) before any subcommand runs, so handlers share one app wiring and
// one structured logger.
package commands
