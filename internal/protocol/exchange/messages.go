package exchange

import (
	"encoding/json"
	"fmt"

	"chesslink/internal/domain"
	"chesslink/internal/game"
)

// Kind tags a protocol message.
type Kind byte

const (
	KindMoveProposal Kind = 0x01
	KindMoveAck      Kind = 0x02
	KindResyncReq    Kind = 0x03
	KindResyncResp   Kind = 0x04
	KindHeartbeat    Kind = 0x05
)

func (k Kind) String() string {
	switch k {
	case KindMoveProposal:
		return "move-proposal"
	case KindMoveAck:
		return "move-ack"
	case KindResyncReq:
		return "resync-request"
	case KindResyncResp:
		return "resync-response"
	case KindHeartbeat:
		return "heartbeat"
	}
	return fmt.Sprintf("kind(%#x)", byte(k))
}

// MoveProposal offers the peer one move. Seq inside the move is the ordering
// and dedup key.
type MoveProposal struct {
	Move game.Move `json:"move"`
}

// MoveAck acknowledges the proposal with the given sequence number.
type MoveAck struct {
	Seq uint64 `json:"seq"`
}

// ResyncRequest opens reconciliation after a reconnect. Digest covers the
// sender's move list up to LastKnownSeq so the peer can detect divergence
// before shipping any suffix.
type ResyncRequest struct {
	LastKnownSeq uint64 `json:"last_known_seq"`
	Digest       []byte `json:"digest"`
}

// ResyncResponse carries the moves the requester is missing. An empty Moves
// means the histories already match.
type ResyncResponse struct {
	Moves []game.Move `json:"moves"`
}

// Heartbeat detects silent peer death on an idle link.
type Heartbeat struct{}

// Encode renders a message as kind byte + JSON for the channel.
func Encode(kind Kind, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+len(b))
	out[0] = byte(kind)
	copy(out[1:], b)
	return out, nil
}

// Decode splits a channel plaintext into its kind and raw payload.
func Decode(b []byte) (Kind, json.RawMessage, error) {
	if len(b) < 1 {
		return 0, nil, fmt.Errorf("%w: empty protocol message", domain.ErrProtocol)
	}
	kind := Kind(b[0])
	switch kind {
	case KindMoveProposal, KindMoveAck, KindResyncReq, KindResyncResp, KindHeartbeat:
		return kind, json.RawMessage(b[1:]), nil
	}
	return 0, nil, fmt.Errorf("%w: unknown message kind %#x", domain.ErrProtocol, b[0])
}

// DecodePayload unmarshals the raw payload into out.
func DecodePayload(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed %T payload: %v", domain.ErrProtocol, out, err)
	}
	return nil
}
