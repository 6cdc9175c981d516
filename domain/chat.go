// Package domain contains core concepts of the messaging system.
// This file defines direct-message Chats. A chat always has exactly
// two members; group chats are not supported.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	ID        uuid.UUID
	Members   [2]string // user IDs, stored in lexicographic order
	CreatedAt time.Time
}

// NewChat builds a chat between two users with a normalized member order,
// so the same pair always produces the same Members value.
func NewChat(userA, userB string) Chat {
	if userB < userA {
		userA, userB = userB, userA
	}
	return Chat{
		ID:        uuid.New(),
		Members:   [2]string{userA, userB},
		CreatedAt: time.Now().UTC(),
	}
}

// HasMember reports whether userID belongs to the chat.
func (c Chat) HasMember(userID string) bool {
	return c.Members[0] == userID || c.Members[1] == userID
}
