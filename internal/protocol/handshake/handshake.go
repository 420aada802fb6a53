package handshake

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/crypto/hkdf"

	"chesslink/internal/channel"
	"chesslink/internal/crypto"
	"chesslink/internal/domain"
	"chesslink/internal/session"
	"chesslink/internal/util/memzero"
	"chesslink/internal/wire"
)

// Version is the wire protocol version carried in every Hello. Peers with a
// different version refuse to talk rather than misinterpret frames.
const Version byte = 1

const transcriptLabel = "chesslink-hs-v1"

// DefaultTimeout bounds the whole exchange.
const DefaultTimeout = 10 * time.Second

// Role selects the directional key assignment; the listening side runs as
// session.Host.
type Role = session.Role

// Hello is the single handshake message, sent in the clear as a TypeHello
// frame before any encryption exists.
type Hello struct {
	Version   byte                 `json:"v"`
	XPub      domain.X25519Public  `json:"x_pub"`
	EdPub     domain.Ed25519Public `json:"ed_pub"`
	Ephemeral domain.X25519Public  `json:"ephemeral"`
	Nonce     [16]byte             `json:"nonce"`
	Sig       []byte               `json:"sig"`
}

// Result is what a completed handshake yields: directional channel keys and
// the authenticated peer identity.
type Result struct {
	Keys Keys
	Peer domain.PeerIdentity
}

// Keys aliases the channel key pair so callers need not import channel
// directly for the type.
type Keys = channel.Keys

// Run performs the handshake over conn within the deadline. When
// expectedPeer is non-empty the remote identity fingerprint must match it;
// otherwise the caller is trusting first use and should persist the returned
// fingerprint.
func Run(conn net.Conn, role Role, id domain.Identity, expectedPeer domain.Fingerprint, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer conn.SetDeadline(time.Time{})

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(ephPriv[:])

	ours, err := makeHello(id, ephPub)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(ours)
	if err != nil {
		return nil, err
	}

	// The host speaks first; the joiner answers. Strict ordering keeps the
	// exchange deadlock-free even on unbuffered transports.
	var theirs Hello
	if role == session.Host {
		if err := wire.WriteFrame(conn, wire.TypeHello, raw); err != nil {
			return nil, err
		}
		if theirs, err = readHello(conn); err != nil {
			return nil, err
		}
	} else {
		if theirs, err = readHello(conn); err != nil {
			return nil, err
		}
		if err := wire.WriteFrame(conn, wire.TypeHello, raw); err != nil {
			return nil, err
		}
	}

	if err := verifyHello(theirs, expectedPeer); err != nil {
		return nil, err
	}

	keys, err := deriveKeys(role, id, ephPriv, ours, theirs)
	if err != nil {
		return nil, err
	}

	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &Result{
		Keys: keys,
		Peer: domain.PeerIdentity{
			Fingerprint: domain.Fingerprint(crypto.Fingerprint(theirs.XPub.Slice())),
			XPub:        theirs.XPub,
			EdPub:       theirs.EdPub,
			Address:     addr,
		},
	}, nil
}

func makeHello(id domain.Identity, ephPub domain.X25519Public) (Hello, error) {
	h := Hello{
		Version:   Version,
		XPub:      id.XPub,
		EdPub:     id.EdPub,
		Ephemeral: ephPub,
	}
	if _, err := rand.Read(h.Nonce[:]); err != nil {
		return Hello{}, err
	}
	h.Sig = crypto.SignEd25519(id.EdPriv, transcript(h))
	return h, nil
}

func readHello(conn net.Conn) (Hello, error) {
	t, payload, err := wire.ReadFrame(conn)
	if err != nil {
		return Hello{}, err
	}
	if t != wire.TypeHello {
		return Hello{}, fmt.Errorf("%w: expected hello frame, got %#x", domain.ErrProtocol, byte(t))
	}
	var h Hello
	if err := json.Unmarshal(payload, &h); err != nil {
		return Hello{}, fmt.Errorf("%w: malformed hello: %v", domain.ErrProtocol, err)
	}
	return h, nil
}

func verifyHello(h Hello, expected domain.Fingerprint) error {
	if h.Version != Version {
		return fmt.Errorf("%w: peer speaks version %d, we speak %d", domain.ErrProtocol, h.Version, Version)
	}
	if !crypto.VerifyEd25519(h.EdPub, transcript(h), h.Sig) {
		return fmt.Errorf("%w: hello signature invalid", domain.ErrAuthentication)
	}
	if expected != "" {
		got := domain.Fingerprint(crypto.Fingerprint(h.XPub.Slice()))
		if got != expected {
			return fmt.Errorf("%w: peer fingerprint %s does not match pinned %s", domain.ErrAuthentication, got, expected)
		}
	}
	return nil
}

// transcript binds the signature to every authenticated field of the Hello.
func transcript(h Hello) []byte {
	out := make([]byte, 0, 1+32+32+32+16+len(transcriptLabel))
	out = append(out, h.Version)
	out = append(out, h.XPub[:]...)
	out = append(out, h.EdPub[:]...)
	out = append(out, h.Ephemeral[:]...)
	out = append(out, h.Nonce[:]...)
	out = append(out, transcriptLabel...)
	return out
}

// deriveKeys computes the root secret and splits it into directional keys.
// The concatenation order is fixed host-first so both sides agree:
//
//	dh(ephHost, ephJoin) || dh(idHost, ephJoin) || dh(ephHost, idJoin)
func deriveKeys(role Role, id domain.Identity, ephPriv domain.X25519Private, ours, theirs Hello) (Keys, error) {
	var keys Keys

	dhEE, err := crypto.DH(ephPriv, theirs.Ephemeral)
	if err != nil {
		return keys, err
	}
	// dhHostID pairs the host identity with the joiner ephemeral; dhJoinID
	// pairs the joiner identity with the host ephemeral. Each side reaches
	// the same secrets from its own private halves.
	var dhHostID, dhJoinID [32]byte
	if role == session.Host {
		dhHostID, err = crypto.DH(id.XPriv, theirs.Ephemeral)
		if err != nil {
			return keys, err
		}
		dhJoinID, err = crypto.DH(ephPriv, theirs.XPub)
		if err != nil {
			return keys, err
		}
	} else {
		dhHostID, err = crypto.DH(ephPriv, theirs.XPub)
		if err != nil {
			return keys, err
		}
		dhJoinID, err = crypto.DH(id.XPriv, theirs.Ephemeral)
		if err != nil {
			return keys, err
		}
	}

	ikm := make([]byte, 0, 32*3)
	ikm = append(ikm, dhEE[:]...)
	ikm = append(ikm, dhHostID[:]...)
	ikm = append(ikm, dhJoinID[:]...)
	defer memzero.Zero(ikm)
	memzero.Zero(dhEE[:])
	memzero.Zero(dhHostID[:])
	memzero.Zero(dhJoinID[:])

	// Both hello nonces salt the derivation, host nonce first.
	salt := make([]byte, 0, 32)
	if role == session.Host {
		salt = append(append(salt, ours.Nonce[:]...), theirs.Nonce[:]...)
	} else {
		salt = append(append(salt, theirs.Nonce[:]...), ours.Nonce[:]...)
	}

	r := hkdf.New(sha256.New, ikm, salt, []byte(transcriptLabel))
	var hostKey, joinKey [32]byte
	if _, err := io.ReadFull(r, hostKey[:]); err != nil {
		return keys, err
	}
	if _, err := io.ReadFull(r, joinKey[:]); err != nil {
		return keys, err
	}
	if role == session.Host {
		keys.Send, keys.Recv = hostKey, joinKey
	} else {
		keys.Send, keys.Recv = joinKey, hostKey
	}
	memzero.Zero(hostKey[:])
	memzero.Zero(joinKey[:])
	return keys, nil
}
