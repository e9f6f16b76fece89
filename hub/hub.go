// Package hub connects WebSocket clients to a single veto session.
//
// Features:
//   - One run loop owns the session.Manager; connects, disconnects and client
//     requests are applied one at a time in arrival order
//   - Every connection gets a random UUID; the session never sees the socket
//   - Outbound frames are queued per client and written by that client's own
//     goroutine, so a slow reader never stalls the loop
//   - A client whose queue is full is dropped and then handled as a disconnect
//   - Malformed frames are rejected to the sender before reaching the session
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/huujin/valorant-card/session"
)

type Config struct {
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		PongTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

type request struct {
	client *Client
	data   []byte
}

type Hub struct {
	manager  *session.Manager
	log      zerolog.Logger
	cfg      Config
	upgrader websocket.Upgrader

	// owned by Run
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan request
	snapshots  chan chan session.Snapshot
	done       chan struct{}
}

// New builds a hub around m. checkOrigin may be nil to accept any origin.
func New(m *session.Manager, logger zerolog.Logger, cfg Config, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Hub{
		manager: m,
		log:     logger,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan request, 64),
		snapshots:  make(chan chan session.Snapshot),
		done:       make(chan struct{}),
	}
}

// Run processes hub traffic until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	h.log.Info().Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.log.Info().Msg("hub stopped")
			return nil

		case c := <-h.register:
			h.clients[c.id] = c
			h.log.Info().
				Str("conn_id", c.id).
				Str("remote", c.remote).
				Int("clients", len(h.clients)).
				Msg("client connected")

			session.Deliver(h, h.manager.Connect(c.id))

		case c := <-h.unregister:
			h.drop(c)
			h.log.Info().
				Str("conn_id", c.id).
				Int("clients", len(h.clients)).
				Msg("client disconnected")

			session.Deliver(h, h.manager.Disconnect(c.id))

		case req := <-h.inbound:
			h.handle(req)

		case reply := <-h.snapshots:
			reply <- h.manager.Snapshot()
		}
	}
}

func (h *Hub) handle(req request) {
	id := req.client.id
	if _, ok := h.clients[id]; !ok {
		return
	}

	intent, err := decodeIntent(req.data)
	if err != nil {
		h.log.Info().Str("conn_id", id).Err(err).Msg("rejected frame")
		h.SendTo(id, session.EventRejected, session.Rejected{Reason: session.Code(err), Message: err.Error()})
		return
	}

	h.log.Debug().Str("conn_id", id).Str("intent", fmt.Sprintf("%T", intent)).Msg("intent")

	effects := h.manager.Handle(id, intent)
	for _, e := range effects {
		if r, ok := e.Payload.(session.Rejected); ok && e.Event == session.EventRejected {
			h.log.Info().
				Str("conn_id", id).
				Str("intent", fmt.Sprintf("%T", intent)).
				Str("reason", r.Reason).
				Msg("intent rejected")
			continue
		}
		h.log.Debug().
			Str("conn_id", id).
			Str("event", e.Event).
			Stringer("scope", e.Scope).
			Msg("delivering")
	}

	session.Deliver(h, effects)
}

// Snapshot returns a copy of the session, read through the run loop.
func (h *Hub) Snapshot(ctx context.Context) (session.Snapshot, error) {
	reply := make(chan session.Snapshot, 1)

	select {
	case h.snapshots <- reply:
	case <-h.done:
		return session.Snapshot{}, context.Canceled
	case <-ctx.Done():
		return session.Snapshot{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return session.Snapshot{}, ctx.Err()
	}
}

// SendTo, BroadcastAll and BroadcastExcept implement session.Broadcaster.
// They must only be called from the run loop.
func (h *Hub) SendTo(connID, event string, payload any) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.enqueue(c, frame)
}

func (h *Hub) BroadcastAll(event string, payload any) {
	h.BroadcastExcept("", event, payload)
}

func (h *Hub) BroadcastExcept(connID, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}
	for id, c := range h.clients {
		if id == connID {
			continue
		}
		h.enqueue(c, frame)
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	frame, err := json.Marshal(ServerMessage{Event: event, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return nil, false
	}
	return frame, true
}

func (h *Hub) enqueue(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.log.Warn().Str("conn_id", c.id).Msg("send buffer full, dropping client")
		h.drop(c)
	}
}

// drop forgets c and closes its queue; the write pump then closes the socket
// and the read pump reports the disconnect.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
}

func (h *Hub) closeAll() {
	for _, c := range h.clients {
		h.drop(c)
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) submit(req request) bool {
	select {
	case h.inbound <- req:
		return true
	case <-h.done:
		return false
	}
}
