// Package domain contains core concepts of the messaging system.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is an account known to the backend. ID is the stable identity
// the realtime layer routes by; Email and Username are unique.
type User struct {
	ID        string
	Username  string
	Email     string
	AvatarURL string
	CreatedAt time.Time
}
