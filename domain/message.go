// Package domain contains core concepts of the messaging system.
// This file defines Message events and related rules.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat message.
type Message struct {
	ID        uuid.UUID // unique identifier
	ChatID    uuid.UUID
	SenderID  string
	Content   string
	CreatedAt time.Time
}
