package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"abilgram/contract"
	"abilgram/domain/event"

	"github.com/gorilla/websocket"
)

// Per-session lifecycle: Unidentified on transport accept, Identified
// after a successful announce, Closed is terminal.
type SessionState int32

const (
	StateUnidentified SessionState = iota
	StateIdentified
	StateClosed
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errSessionClosed = fmt.Errorf("session closed")

// Client is one live websocket connection. The read pump feeds inbound
// envelopes to the router; the write pump owns the connection's write side
// and drains the buffered send channel, so delivery order per recipient is
// the order the router enqueued.
type Client struct {
	id     contract.SessionID
	conn   *websocket.Conn
	log    *slog.Logger
	hub    *Hub
	router *Router

	send  chan event.Envelope
	done  chan struct{}
	state atomic.Int32
	close sync.Once
}

func (c *Client) ID() contract.SessionID { return c.id }

func (c *Client) State() SessionState { return SessionState(c.state.Load()) }

// Consume enqueues an outbound envelope. It never blocks: a full buffer
// or a closed session drops the frame, matching the protocol's absence of
// delivery guarantees.
func (c *Client) Consume(e event.Envelope) error {
	select {
	case <-c.done:
		return errSessionClosed
	default:
	}
	select {
	case c.send <- e:
		return nil
	case <-c.done:
		return errSessionClosed
	default:
		c.log.Warn("Send buffer full, frame dropped", "event", e.Event)
		return fmt.Errorf("send buffer full")
	}
}

// Evict requests forced closure because a newer session claimed this
// session's identity. The evicted client sees an ordinary disconnect;
// no "you were replaced" message is sent.
func (c *Client) Evict() {
	go c.shutdown()
}

// shutdown moves the session to Closed exactly once, from whichever side
// got there first: transport close, read error, or eviction. Unbind is
// idempotent, so racing paths are safe.
func (c *Client) shutdown() {
	c.close.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.done)

		deadline := time.Now().Add(writeWait)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()

		c.hub.unregister(c)
	})
}

func (c *Client) readPump() {
	defer c.shutdown()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env event.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("Unparseable frame dropped", "err", err)
			continue
		}
		c.dispatch(env)
	}
}

// dispatch maps inbound wire events onto router operations. Unknown
// events are dropped with a log line, never an error to the peer.
func (c *Client) dispatch(env event.Envelope) {
	switch env.Event {
	case event.KindSetUserID:
		var p event.SetUserID
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Warn("Malformed set_user_id dropped", "err", err)
			return
		}
		if out := c.router.AnnounceIdentity(c, contract.Identity(p.UserID)); out != AnnounceRejected {
			c.state.CompareAndSwap(int32(StateUnidentified), int32(StateIdentified))
			// shutdown may have finished while the announce was in flight;
			// its Unbind then ran before the binding existed. Re-check and
			// release so a closed session never stays resolvable.
			if c.State() == StateClosed {
				c.hub.registry.Unbind(c.id)
			}
		}

	case event.KindGetOnlineUsers:
		c.router.OnlineUsers(c)

	case event.KindChat:
		var p event.ChatCreated
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Warn("Malformed chat broadcast dropped", "err", err)
			return
		}
		c.router.BroadcastChatCreated(p)

	case event.KindMessage:
		var p event.DirectMessage
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Warn("Malformed message dropped", "err", err)
			return
		}
		c.router.RouteDirectMessage(c, p)

	default:
		c.log.Debug("Unknown event ignored", "event", env.Event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case <-c.done:
			return
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
