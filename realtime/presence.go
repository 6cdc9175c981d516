package realtime

import "abilgram/contract"

// Presence answers "who is online" as a pure projection of the registry's
// bindings. It holds no state of its own, so there is no window where an
// eviction could make an identity flicker offline: the registry installs
// the new binding before the old transport is asked to close, and every
// snapshot reads that same index.
type Presence struct {
	registry *Registry
}

func NewPresence(registry *Registry) *Presence {
	return &Presence{registry: registry}
}

// Snapshot returns identity -> true for every identity with a live
// session. The value is always true; offline identities are simply
// absent, matching the online_users wire shape.
func (p *Presence) Snapshot() map[contract.Identity]bool {
	online := make(map[contract.Identity]bool)
	for _, identity := range p.registry.identities() {
		online[identity] = true
	}
	return online
}

// Online reports whether a single identity has a live session.
func (p *Presence) Online(identity contract.Identity) bool {
	_, ok := p.registry.ResolveSession(identity)
	return ok
}
