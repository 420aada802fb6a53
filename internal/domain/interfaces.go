package domain

import "chesslink/internal/game"

// PersistedState is the encrypted-at-rest snapshot of a game and the minimal
// session metadata needed to resume it. The move list inside the GameRecord,
// not the position snapshot, is the source of truth: replaying it from the
// initial position must reproduce Position and Status exactly.
type PersistedState struct {
	Version         int             `json:"v"`
	Game            game.GameRecord `json:"game"`
	Role            string          `json:"role"`
	PeerFingerprint Fingerprint     `json:"peer_fingerprint,omitempty"`
	SavedUTC        int64           `json:"saved_utc"`
}

// IdentityStore persists the local identity, encrypted with a passphrase.
type IdentityStore interface {
	SaveIdentity(passphrase string, id Identity) error
	LoadIdentity(passphrase string) (Identity, error)
}

// GameStore persists the encrypted game snapshot with atomic replace.
type GameStore interface {
	SaveGame(passphrase string, st PersistedState) error
	// LoadGame returns ErrNotFound when no snapshot exists.
	LoadGame(passphrase string) (PersistedState, error)
	DeleteGame() error
}

// TrustStore records peers whose fingerprints we have accepted before.
type TrustStore interface {
	SavePeer(p TrustedPeer) error
	LoadPeer(fp Fingerprint) (TrustedPeer, bool, error)
	ListPeers() ([]TrustedPeer, error)
}
