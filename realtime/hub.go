package realtime

import (
	"log/slog"
	"net/http"
	"sync"

	"abilgram/contract"
	"abilgram/domain/event"
	"abilgram/observability"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub accepts websocket connections and tracks every live session,
// identified or not. The registry only knows about bound sessions; chat
// broadcasts need the full set, so the hub keeps its own map.
type Hub struct {
	log      *slog.Logger
	registry *Registry
	router   *Router
	monitor  *observability.Monitor
	upgrader websocket.Upgrader

	bufferSize int

	mu      sync.RWMutex
	clients map[contract.SessionID]*Client
}

// NewHub wires the hub into the router as its broadcast source.
func NewHub(log *slog.Logger, registry *Registry, router *Router, monitor *observability.Monitor, bufferSize int) *Hub {
	h := &Hub{
		log:      log,
		registry: registry,
		router:   router,
		monitor:  monitor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client connects from a different origin; auth
			// happens at the application layer, not via Origin checks.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		clients:    make(map[contract.SessionID]*Client),
	}
	router.sessions = h
	return h
}

// ServeWS upgrades an HTTP request and admits the connection
// unauthenticated; it stays useless for routing until the client
// announces an identity.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "err", err)
		return
	}

	c := &Client{
		id:     contract.SessionID(uuid.NewString()),
		conn:   conn,
		hub:    h,
		router: h.router,
		send:   make(chan event.Envelope, h.bufferSize),
		done:   make(chan struct{}),
	}
	c.log = h.log.With("session", c.id)

	h.register(c)

	go c.readPump()
	go c.writePump()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.monitor.Connects.Add(1)
	h.log.Info("Session connected", "session", c.id)
}

// unregister runs exactly once per session, on whichever close path fired
// first. It removes the client and releases its binding; Unbind being
// idempotent makes the eviction/transport-close race harmless.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()

	identity, wasBound := h.registry.Unbind(c.id)
	h.monitor.Disconnects.Add(1)
	if wasBound {
		h.log.Info("Session disconnected", "session", c.id, "identity", identity)
	} else {
		h.log.Info("Session disconnected", "session", c.id)
	}
}

// Each visits a snapshot of all connected sessions. The snapshot is taken
// under the lock but Consume runs outside it, so a slow client cannot
// stall registration.
func (h *Hub) Each(fn func(contract.Session)) {
	h.mu.RLock()
	sessions := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		sessions = append(sessions, c)
	}
	h.mu.RUnlock()

	for _, c := range sessions {
		fn(c)
	}
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
