package wire_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"chesslink/internal/domain"
	"chesslink/internal/wire"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := wire.WriteFrame(&buf, wire.TypeHello, []byte("hello")); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	if err := wire.WriteFrame(&buf, wire.TypeSealed, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("write sealed: %v", err)
	}

	r := wire.NewReader(&buf)

	typ, payload, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if typ != wire.TypeHello || string(payload) != "hello" {
		t.Fatalf("got type %#x payload %q", byte(typ), payload)
	}

	typ, payload, err = r.ReadFrame()
	if err != nil {
		t.Fatalf("read sealed: %v", err)
	}
	if typ != wire.TypeSealed || !bytes.Equal(payload, []byte{0x01, 0x02}) {
		t.Fatalf("got type %#x payload %x", byte(typ), payload)
	}
}

func TestFrame_EmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := wire.WriteFrame(&buf, wire.TypeSealed, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, payload, err := wire.NewReader(&buf).ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if typ != wire.TypeSealed || len(payload) != 0 {
		t.Fatalf("got type %#x payload %x", byte(typ), payload)
	}
}

func TestReadFrame_ExactRead_LeavesStreamIntact(t *testing.T) {
	var buf bytes.Buffer
	if err := wire.WriteFrame(&buf, wire.TypeHello, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wire.WriteFrame(&buf, wire.TypeSealed, []byte("second")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The unbuffered read consumes exactly one frame.
	typ, payload, err := wire.ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if typ != wire.TypeHello || string(payload) != "first" {
		t.Fatalf("got type %#x payload %q", byte(typ), payload)
	}

	// A fresh reader picks up the rest, as after a handshake handover.
	typ, payload, err = wire.NewReader(&buf).ReadFrame()
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if typ != wire.TypeSealed || string(payload) != "second" {
		t.Fatalf("got type %#x payload %q", byte(typ), payload)
	}
}

func TestWriteFrame_Oversized_Fails(t *testing.T) {
	var buf bytes.Buffer
	err := wire.WriteFrame(&buf, wire.TypeSealed, make([]byte, wire.MaxFrameSize+1))
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("got %v, want ErrProtocol", err)
	}
	if buf.Len() != 0 {
		t.Fatal("oversized frame reached the writer")
	}
}

func TestReadFrame_OversizedLength_Fails(t *testing.T) {
	var buf bytes.Buffer
	hdr := make([]byte, 5)
	binary.BigEndian.PutUint32(hdr[:4], wire.MaxFrameSize+1)
	hdr[4] = byte(wire.TypeSealed)
	buf.Write(hdr)

	_, _, err := wire.NewReader(&buf).ReadFrame()
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("got %v, want ErrProtocol", err)
	}
}

func TestReadFrame_Truncated_Fails(t *testing.T) {
	var full bytes.Buffer
	if err := wire.WriteFrame(&full, wire.TypeHello, []byte("truncate me")); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, n := range []int{0, 3, 5, full.Len() - 1} {
		r := wire.NewReader(bytes.NewReader(full.Bytes()[:n]))
		if _, _, err := r.ReadFrame(); !errors.Is(err, domain.ErrTransport) {
			t.Fatalf("prefix %d: got %v, want ErrTransport", n, err)
		}
	}
}
