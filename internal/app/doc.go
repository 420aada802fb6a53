// Package app wires application dependencies for the CLI.
//
// It builds the concrete stores, the rules engine and the core facade from
// Config, exposing them via the Wire struct for commands to use.
package app
