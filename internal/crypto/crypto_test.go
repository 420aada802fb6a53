package crypto_test

import (
	"testing"

	"chesslink/internal/crypto"
)

func TestDH_BothDirectionsAgree(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	bPriv, bPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	ab, err := crypto.DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("DH a->b: %v", err)
	}
	ba, err := crypto.DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("DH b->a: %v", err)
	}
	if ab != ba {
		t.Fatal("shared secrets differ")
	}
}

func TestSignVerify_OK(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	msg := []byte("hello board")
	sig := crypto.SignEd25519(priv, msg)

	if !crypto.VerifyEd25519(pub, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if crypto.VerifyEd25519(pub, []byte("tampered"), sig) {
		t.Fatal("signature verified over wrong message")
	}
}

func TestFingerprint_StableAndShort(t *testing.T) {
	id, err := crypto.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	fp := crypto.IdentityFingerprint(id)
	if fp == "" {
		t.Fatal("empty fingerprint")
	}
	if len(fp) != 20 {
		t.Fatalf("fingerprint length %d, want 20 hex chars", len(fp))
	}
	if fp != crypto.IdentityFingerprint(id) {
		t.Fatal("fingerprint not deterministic")
	}

	other, err := crypto.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	if fp == crypto.IdentityFingerprint(other) {
		t.Fatal("distinct identities share a fingerprint")
	}
}
