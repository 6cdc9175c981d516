// Package event defines the realtime wire surface: the envelopes exchanged
// over a websocket connection and the payloads they carry. Event names and
// payload shapes are frozen for compatibility with existing clients.
package event

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	// Inbound.
	KindSetUserID      Kind = "set_user_id"
	KindGetOnlineUsers Kind = "get_online_users"
	KindChat           Kind = "chat"
	KindMessage        Kind = "message"

	// Outbound.
	KindOnlineUsers Kind = "online_users"
	KindNewChat     Kind = "new_chat"
	KindNewMessage  Kind = "new_message"
)

// Envelope is one websocket frame. Data holds the kind-specific payload and
// is left raw until the router knows which shape to decode.
type Envelope struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SetUserID announces the identity owning the connection.
type SetUserID struct {
	UserID string `json:"user_id"`
}

// ChatCreated notifies all connected sessions that a chat came into
// existence. The chat payload is opaque to the realtime layer; it is
// re-emitted verbatim as a new_chat event.
type ChatCreated struct {
	UserID string          `json:"user_id"`
	Chat   json.RawMessage `json:"chat"`
}

// DirectMessage is a point-to-point message addressed by recipient identity.
type DirectMessage struct {
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

// NewMessage is the delivery shape seen by the recipient.
type NewMessage struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"` // ISO-8601
}

// NewEnvelope marshals payload into an Envelope of the given kind.
// Marshalling of locally built payloads cannot fail, so errors are dropped.
func NewEnvelope(kind Kind, payload any) Envelope {
	data, _ := json.Marshal(payload)
	return Envelope{Event: kind, Data: data}
}

// FormatTimestamp renders t the way clients expect created_at fields.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
