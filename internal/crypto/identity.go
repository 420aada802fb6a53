package crypto

import (
	"fmt"

	"chesslink/internal/domain"
)

// GenerateIdentity creates a fresh long-term identity: an X25519 pair for key
// agreement and an Ed25519 pair for handshake signatures.
func GenerateIdentity() (domain.Identity, error) {
	xpriv, xpub, err := GenerateX25519()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("generating agreement key: %w", err)
	}
	edpriv, edpub, err := GenerateEd25519()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("generating signing key: %w", err)
	}
	return domain.Identity{XPub: xpub, XPriv: xpriv, EdPub: edpub, EdPriv: edpriv}, nil
}

// IdentityFingerprint is the short digest peers pin. It covers the X25519
// public key only, matching what the handshake verifies.
func IdentityFingerprint(id domain.Identity) domain.Fingerprint {
	return domain.Fingerprint(Fingerprint(id.XPub.Slice()))
}
