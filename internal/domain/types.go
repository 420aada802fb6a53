package domain

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is a signing public key.
type Ed25519Public [32]byte

func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is a signing private key (ed25519.PrivateKey layout).
type Ed25519Private [64]byte

func (k Ed25519Private) Slice() []byte { return k[:] }

// Fingerprint is a short hex digest of an identity public key.
type Fingerprint string

// Identity holds the long-term keys stored locally.
type Identity struct {
	XPub   X25519Public
	XPriv  X25519Private
	EdPub  Ed25519Public
	EdPriv Ed25519Private
}

// PeerIdentity identifies the remote side of a session. It is created during
// the handshake and immutable afterwards.
type PeerIdentity struct {
	Fingerprint Fingerprint  `json:"fingerprint"`
	XPub        X25519Public `json:"x_pub"`
	EdPub       Ed25519Public `json:"ed_pub"`
	Address     string       `json:"address"`
}

// TrustedPeer is a persisted record of a peer we have played before.
type TrustedPeer struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Name        string      `json:"name,omitempty"`
	Address     string      `json:"address,omitempty"`
	FirstSeen   int64       `json:"first_seen_utc"`
}
