package realtime

import (
	"log/slog"
	"time"

	"abilgram/contract"
	"abilgram/domain/event"
	"abilgram/observability"
)

// AnnounceOutcome describes how an identity announce was handled.
type AnnounceOutcome int

const (
	AnnounceBound AnnounceOutcome = iota
	AnnounceNoop
	AnnounceRebound
	AnnounceRejected
)

// RouteOutcome describes how a direct message was handled. Every branch
// except RouteDelivered is a silent drop at the wire: the sender gets no
// feedback, only a log line is written.
type RouteOutcome int

const (
	RouteDelivered RouteOutcome = iota
	RouteRecipientOffline
	RouteSenderUnbound
	RouteMalformed
)

// broadcaster enumerates every connected session, identified or not.
// Implemented by the Hub.
type broadcaster interface {
	Each(fn func(contract.Session))
}

// Router dispatches inbound realtime events to the right recipients.
// It has no fatal error class: malformed or unroutable events degrade to
// logged no-ops so one bad peer never takes down the shared process.
type Router struct {
	log      *slog.Logger
	registry *Registry
	presence *Presence
	monitor  *observability.Monitor
	sessions broadcaster
	now      func() time.Time
}

func NewRouter(log *slog.Logger, registry *Registry, presence *Presence, monitor *observability.Monitor) *Router {
	return &Router{
		log:      log,
		registry: registry,
		presence: presence,
		monitor:  monitor,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AnnounceIdentity binds the announced identity to the session, evicting
// any older session holding it. The identity string is trusted as-is:
// the realtime channel does not re-verify the auth token on announce.
// That gap is inherited from the upstream protocol and kept deliberately.
func (rt *Router) AnnounceIdentity(s contract.Session, identity contract.Identity) AnnounceOutcome {
	if identity == "" {
		rt.log.Warn("Identity announce with empty user_id", "session", s.ID())
		return AnnounceRejected
	}

	res := rt.registry.Bind(s, identity)
	switch res.Outcome {
	case BoundAlready:
		rt.log.Debug("Duplicate identity announce skipped", "session", s.ID(), "identity", identity)
		return AnnounceNoop
	case Rebound:
		// The new binding is already live; closing the loser is fire and
		// forget so Bind never waits on a transport teardown.
		res.Evicted.Evict()
		rt.monitor.Evictions.Add(1)
		return AnnounceRebound
	default:
		return AnnounceBound
	}
}

// OnlineUsers replies to the requesting session, and only to it, with the
// current presence snapshot.
func (rt *Router) OnlineUsers(s contract.Session) {
	snapshot := rt.presence.Snapshot()
	payload := make(map[string]bool, len(snapshot))
	for identity, online := range snapshot {
		payload[string(identity)] = online
	}
	if err := s.Consume(event.NewEnvelope(event.KindOnlineUsers, payload)); err != nil {
		rt.log.Warn("Online users reply dropped", "session", s.ID(), "err", err)
	}
}

// BroadcastChatCreated re-emits the chat payload as a new_chat event to
// every connected session, sender included. Chat-partner discovery is
// push-broadcast: the creating side does not know whether the counterpart
// is online, so nobody is targeted. Returns the number of sessions that
// accepted the frame.
func (rt *Router) BroadcastChatCreated(msg event.ChatCreated) int {
	if msg.UserID == "" || len(msg.Chat) == 0 {
		rt.log.Warn("Malformed chat broadcast dropped", "user_id", msg.UserID)
		return 0
	}

	env := event.Envelope{Event: event.KindNewChat, Data: msg.Chat}
	delivered := 0
	rt.sessions.Each(func(s contract.Session) {
		if err := s.Consume(env); err == nil {
			delivered++
		}
	})
	rt.monitor.Broadcasts.Add(1)
	return delivered
}

// RouteDirectMessage resolves the sender's identity from its session and
// the recipient's live session from the registry, then unicasts a
// timestamped new_message event. Fire and forget: an offline recipient,
// an unbound sender, and a malformed payload are all silent drops.
func (rt *Router) RouteDirectMessage(s contract.Session, msg event.DirectMessage) RouteOutcome {
	sender, ok := rt.registry.ResolveIdentity(s.ID())
	if !ok {
		rt.log.Warn("Unauthorized message attempt from unbound session", "session", s.ID())
		rt.monitor.Dropped.Add(1)
		return RouteSenderUnbound
	}

	if msg.RecipientID == "" || msg.Message == "" {
		rt.log.Warn("Invalid message data", "session", s.ID(), "sender", sender)
		rt.monitor.Dropped.Add(1)
		return RouteMalformed
	}

	recipient, ok := rt.registry.ResolveSession(contract.Identity(msg.RecipientID))
	if !ok {
		rt.log.Warn("Recipient not connected", "sender", sender, "recipient", msg.RecipientID)
		rt.monitor.Dropped.Add(1)
		return RouteRecipientOffline
	}

	out := event.NewMessage{
		SenderID:    string(sender),
		RecipientID: msg.RecipientID,
		Content:     msg.Message,
		CreatedAt:   event.FormatTimestamp(rt.now()),
	}
	if err := recipient.Consume(event.NewEnvelope(event.KindNewMessage, out)); err != nil {
		rt.log.Warn("Message delivery dropped", "recipient", msg.RecipientID, "err", err)
		rt.monitor.Dropped.Add(1)
		return RouteRecipientOffline
	}

	rt.monitor.Delivered.Add(1)
	rt.log.Debug("Message routed", "sender", sender, "recipient", msg.RecipientID)
	return RouteDelivered
}
