package channel

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"chesslink/internal/domain"
	"chesslink/internal/util/memzero"
	"chesslink/internal/wire"
)

const counterBytes = 8

// Keys carries the directional session keys produced by the handshake.
type Keys struct {
	Send [32]byte
	Recv [32]byte
}

// Zero wipes the key material.
func (k *Keys) Zero() {
	memzero.Zero(k.Send[:])
	memzero.Zero(k.Recv[:])
}

// Channel is an authenticated, encrypted message pipe over a framed stream.
// It is not safe for concurrent use; the session loop is its single owner.
type Channel struct {
	w        io.Writer
	r        *wire.Reader
	sendAEAD cipher.AEAD
	recvAEAD cipher.AEAD
	sendCtr  uint64
	lastRecv uint64
}

// Open builds a channel over rw using the handshake-negotiated keys. Counters
// start at zero on both sides.
func Open(rw io.ReadWriter, keys Keys) (*Channel, error) {
	send, err := chacha20poly1305.New(keys.Send[:])
	if err != nil {
		return nil, err
	}
	recv, err := chacha20poly1305.New(keys.Recv[:])
	if err != nil {
		return nil, err
	}
	return &Channel{
		w:        rw,
		r:        wire.NewReader(rw),
		sendAEAD: send,
		recvAEAD: recv,
	}, nil
}

// Send seals plaintext under the next counter and writes it as one frame.
// I/O failures surface as domain.ErrTransport.
func (c *Channel) Send(plaintext []byte) error {
	c.sendCtr++
	nonce := counterNonce(c.sendCtr)

	payload := make([]byte, counterBytes, counterBytes+len(plaintext)+chacha20poly1305.Overhead)
	binary.BigEndian.PutUint64(payload, c.sendCtr)
	payload = c.sendAEAD.Seal(payload, nonce, plaintext, payload[:counterBytes])

	return wire.WriteFrame(c.w, wire.TypeSealed, payload)
}

// Receive blocks for the next frame, rejects replays, and returns the
// authenticated plaintext. Failures are domain.ErrTransport (socket),
// domain.ErrProtocol (malformed frame) or domain.ErrAuthentication
// (tampering or replay).
func (c *Channel) Receive() ([]byte, error) {
	t, payload, err := c.r.ReadFrame()
	if err != nil {
		return nil, err
	}
	if t != wire.TypeSealed {
		return nil, fmt.Errorf("%w: unexpected frame type %#x", domain.ErrProtocol, byte(t))
	}
	if len(payload) < counterBytes+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: sealed frame too short", domain.ErrProtocol)
	}
	ctr := binary.BigEndian.Uint64(payload[:counterBytes])
	if ctr <= c.lastRecv {
		return nil, fmt.Errorf("%w: replayed counter %d (last accepted %d)", domain.ErrAuthentication, ctr, c.lastRecv)
	}
	plaintext, err := c.recvAEAD.Open(nil, counterNonce(ctr), payload[counterBytes:], payload[:counterBytes])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	c.lastRecv = ctr
	return plaintext, nil
}

// counterNonce places the counter in the last 8 bytes of the 12-byte nonce.
func counterNonce(ctr uint64) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[chacha20poly1305.NonceSize-counterBytes:], ctr)
	return nonce
}
