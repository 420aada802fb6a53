// Package transport establishes the single TCP connection a session runs
// over. One side listens and accepts exactly one peer; the other dials.
// Both honour context cancellation so a disconnect or reset unblocks any
// in-flight accept or dial promptly.
package transport
