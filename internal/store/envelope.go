package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"chesslink/internal/util/memzero"
)

const (
	// The current supported version of the encrypted blob format stored on disk.
	envelopeFormatVersion = 1
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// ciphertext has been modified or corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted data")

// blob is the on-disk JSON structure holding the ciphertext and KDF parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// encrypt derives a key from passphrase and seals raw into a JSON blob.
func encrypt(passphrase string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(blob{
		V:      envelopeFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// decrypt opens the JSON blob using a key derived from passphrase.
func decrypt(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > envelopeFormatVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
