//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"abilgram/domain/event"
)

// SessionID identifies one live transport connection. It is opaque and
// meaningless once the connection closes.
type SessionID string

// Identity is the stable application-level user identifier. The realtime
// layer only references it; accounts are owned by the user repository.
type Identity string

// EventSink receives outbound realtime events. Implementations must not
// block: a slow consumer drops frames rather than stalling the router.
type EventSink interface {
	Consume(e event.Envelope) error
}

// Session is a live transport connection as seen by the realtime core.
type Session interface {
	EventSink
	ID() SessionID
	// Evict requests asynchronous closure of the underlying transport.
	// It must be safe to call concurrently and more than once.
	Evict()
}
