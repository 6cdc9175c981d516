//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=../mocks/mock_registry.go -package=mocks
package realtime

import (
	"log/slog"
	"sync"

	"abilgram/contract"
)

// BindOutcome describes which branch a Bind call took. The wire protocol
// stays silent on all of them; outcomes exist so callers and tests can
// assert on behavior.
type BindOutcome int

const (
	// Bound means the identity had no live session and a fresh binding
	// was installed.
	Bound BindOutcome = iota
	// BoundAlready means the session already carried this identity; the
	// registry was left untouched.
	BoundAlready
	// Rebound means an older session held the identity and was replaced.
	// BindResult.Evicted carries the loser.
	Rebound
)

type BindResult struct {
	Outcome BindOutcome
	Evicted contract.Session
}

// Registry owns the live bindings between transport sessions and user
// identities. It is the single source of truth for "who is online where":
// a session maps to at most one identity and an identity to at most one
// live session. All mutations happen under one mutex so that the compound
// evict-then-rebind step appears atomic to every reader.
//
// The registry never returns errors. "Not found" is a normal outcome
// represented as absence.
type Registry struct {
	mu         sync.RWMutex
	log        *slog.Logger
	bySession  map[contract.SessionID]contract.Identity
	byIdentity map[contract.Identity]contract.Session
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:        log,
		bySession:  make(map[contract.SessionID]contract.Identity),
		byIdentity: make(map[contract.Identity]contract.Session),
	}
}

// Bind installs the binding session -> identity. If the identity already
// has a different live session, that session's binding is removed first
// and it is returned as Evicted. The new binding is live before the caller
// requests closure of the evicted transport, so presence never shows the
// identity offline mid-takeover. Closing the loser is the CALLER's job,
// outside the registry's lock; Bind itself never touches the network.
//
// Repeating the same (session, identity) announce is a no-op.
func (r *Registry) Bind(s contract.Session, identity contract.Identity) BindResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, alreadyBound := r.bySession[s.ID()]
	if alreadyBound && current == identity {
		return BindResult{Outcome: BoundAlready}
	}

	var evicted contract.Session
	if old, ok := r.byIdentity[identity]; ok && old.ID() != s.ID() {
		delete(r.bySession, old.ID())
		evicted = old
	}

	// A session re-announcing as a different identity releases its old one.
	if alreadyBound {
		if held, ok := r.byIdentity[current]; ok && held.ID() == s.ID() {
			delete(r.byIdentity, current)
		}
	}

	r.bySession[s.ID()] = identity
	r.byIdentity[identity] = s

	if evicted != nil {
		r.log.Info("Identity rebound, older session evicted",
			"identity", identity, "session", s.ID(), "evicted", evicted.ID())
		return BindResult{Outcome: Rebound, Evicted: evicted}
	}
	r.log.Debug("Identity bound", "identity", identity, "session", s.ID())
	return BindResult{Outcome: Bound}
}

// Unbind removes the binding for a session, returning the identity that
// was bound. Unbinding an unknown session is a no-op, which makes the
// transport-close / eviction-close race safe: whoever loses the race
// simply does nothing.
func (r *Registry) Unbind(sessionID contract.SessionID) (contract.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.bySession[sessionID]
	if !ok {
		return "", false
	}
	delete(r.bySession, sessionID)

	// Only drop the reverse entry if it still points at this session;
	// after an eviction it already belongs to the newer session.
	if held, ok := r.byIdentity[identity]; ok && held.ID() == sessionID {
		delete(r.byIdentity, identity)
	}
	return identity, true
}

// ResolveSession returns the live session for an identity, or absence.
func (r *Registry) ResolveSession(identity contract.Identity) (contract.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byIdentity[identity]
	return s, ok
}

// ResolveIdentity is the inverse lookup.
func (r *Registry) ResolveIdentity(sessionID contract.SessionID) (contract.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.bySession[sessionID]
	return identity, ok
}

// identities returns the set of currently bound identities.
func (r *Registry) identities() []contract.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]contract.Identity, 0, len(r.byIdentity))
	for identity := range r.byIdentity {
		out = append(out, identity)
	}
	return out
}
