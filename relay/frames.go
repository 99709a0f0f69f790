package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const signalingType = "signaling"

const (
	notConnectedText = "You can only chat with connected users."
	unavailableText  = "Recipient is unavailable."
)

// peerID accepts a user id sent as either a JSON string or a number.
type peerID string

func (p *peerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = peerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("peer id: %w", err)
	}
	*p = peerID(n.String())
	return nil
}

// inboundFrame is the union of the chat and signaling wire shapes.
// Chat:      {"receiverId": "...", "message": "..."}
// Signaling: {"type": "signaling", "targetId": "...", "data": ...}
type inboundFrame struct {
	Type       string          `json:"type"`
	ReceiverID peerID          `json:"receiverId"`
	Message    json.RawMessage `json:"message"`
	TargetID   peerID          `json:"targetId"`
	Data       json.RawMessage `json:"data"`
}

type chatFrame struct {
	SenderID string          `json:"senderId"`
	Message  json.RawMessage `json:"message"`
}

type signalFrame struct {
	SenderID string          `json:"senderId"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
}

type errorFrame struct {
	Error string `json:"error"`
}

var (
	notConnectedFrame = mustFrame(errorFrame{Error: notConnectedText})
	unavailableFrame  = mustFrame(errorFrame{Error: unavailableText})
)

func mustFrame(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func parseFrame(raw []byte) (inboundFrame, error) {
	var in inboundFrame
	if err := json.Unmarshal(raw, &in); err != nil {
		return inboundFrame{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	return in, nil
}
