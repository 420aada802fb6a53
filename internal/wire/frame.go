package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"chesslink/internal/domain"
)

// MaxFrameSize bounds a single frame's payload.
const MaxFrameSize = 64 * 1024

// headerSize is the length prefix plus the type tag.
const headerSize = 5

// Type tags the content of a frame. Hello frames travel in the clear during
// the handshake; everything after is Sealed.
type Type byte

const (
	TypeHello  Type = 0x01
	TypeSealed Type = 0x02
)

// Reader deframes a byte stream. It is restartable across reconnects: create
// a fresh Reader per transport connection.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadFrame blocks until a full frame arrives and returns its type and
// payload. Oversized lengths fail with domain.ErrProtocol; I/O failures are
// wrapped in domain.ErrTransport.
func (r *Reader) ReadFrame() (Type, []byte, error) {
	return ReadFrame(r.br)
}

// ReadFrame reads exactly one frame from r without buffering past it, so
// bytes following the frame stay on the stream for the next reader. The
// handshake depends on this before handing the connection to the channel.
func ReadFrame(r io.Reader) (Type, []byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, readErr(err)
	}
	length := binary.BigEndian.Uint32(hdr[:4])
	if length > MaxFrameSize {
		return 0, nil, fmt.Errorf("%w: frame length %d exceeds %d", domain.ErrProtocol, length, MaxFrameSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, readErr(err)
	}
	return Type(hdr[4]), payload, nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, t Type, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: refusing to send %d-byte frame", domain.ErrProtocol, len(payload))
	}
	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	buf[4] = byte(t)
	copy(buf[headerSize:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return nil
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: connection closed", domain.ErrTransport)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
