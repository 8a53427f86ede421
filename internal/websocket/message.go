package websocket

import (
	"encoding/json"
	"time"

	"pos-sync-server/internal/domain"
)

type MessageType string

const (
	// Server -> client entity events, published on local commit.
	TypeProductCreated MessageType = "product_created"
	TypeProductUpdated MessageType = "product_updated"
	TypeProductDeleted MessageType = "product_deleted"

	// Client -> server room management. The tenant scope is joined
	// explicitly after the handshake.
	TypeJoinAccount MessageType = "join_account"
	TypeJoined      MessageType = "joined"

	TypeError MessageType = "error"
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ProductEventPayload struct {
	Product *domain.Product `json:"product"`
}

type ProductDeletedPayload struct {
	ProductID string `json:"product_id"`
}

type JoinAccountPayload struct {
	AccountID string `json:"account_id"`
}

type ErrorPayload struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
