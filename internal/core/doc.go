// Package core is the single entry point the presentation layer talks to.
//
// A Core owns the game record and the session, mutating both only inside its
// session loop goroutine: facade calls post work into the loop and wait for
// the reply, network reads arrive over an inbound channel, and everything
// the presentation needs flows back out of a single ordered event stream.
// No component below this package exposes mutators.
package core
