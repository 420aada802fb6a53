// Package channel wraps a framed byte stream with authenticated encryption.
//
// Each direction of a session has its own ChaCha20-Poly1305 key and a
// strictly increasing message counter seeded at channel open. The counter is
// both the nonce source and the replay guard: a receiver that observes a
// counter not strictly greater than the last accepted one rejects the message
// without decrypting it. There are no retries at this layer; any
// authentication or transport failure escalates to the session state machine.
package channel
