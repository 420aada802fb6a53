// Package handshake establishes a mutually authenticated session over a raw
// connection.
//
// Both sides exchange a Hello frame carrying their long-term X25519 identity
// key, Ed25519 signing key, a fresh ephemeral X25519 key and a signature over
// the lot. The shared root key is an HKDF over three Diffie–Hellman results
// (ephemeral×ephemeral for forward secrecy, plus each identity crossed with
// the peer ephemeral for authentication), from which directional send and
// receive keys are derived. The caller pins the expected peer fingerprint;
// a mismatch or a bad signature fails the handshake with
// domain.ErrAuthentication.
package handshake
