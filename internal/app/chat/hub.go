/*
Package chat contains the WebSocket transport layer: connection lifecycle,
inbound event handling, and best-effort event fan-out.

This file defines the Hub struct, the owner of all live connections. It tracks
every client by connection ID, maintains per-session broadcast groups, and
implements the pairing service's Dispatcher interface.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"blahbluh/internal/pkg/logx"
	"blahbluh/internal/pkg/metrics"
)

// Hub tracks all connected clients and their session broadcast groups.
// Delivery is best-effort: events are queued on the client's buffered send
// channel and dropped with a warning when the queue is full, so callers
// (including the pairing service inside its critical section) never block.
type Hub struct {
	mu sync.RWMutex

	// clients maps connection ID to client.
	clients map[string]*Client

	// groups maps chat session ID to the set of subscribed clients, keyed by
	// connection ID. The transport-level equivalent of a socket.io room.
	groups map[string]map[string]*Client

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub(m *metrics.Metrics) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		metrics: m,
		logger:  hubLogger,
	}
}

// Register adds a newly upgraded client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.connID] = c
	h.logger.Debug().Str("conn_id", c.connID).Int("total_conns", len(h.clients)).Msg("Client connected.")
}

// Unregister removes a client from the hub and from every broadcast group it
// joined, then closes its send channel so the write pump exits.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[c.connID]; !ok || current != c {
		return
	}

	delete(h.clients, c.connID)

	for chatID := range c.groups {
		members := h.groups[chatID]
		delete(members, c.connID)
		if len(members) == 0 {
			delete(h.groups, chatID)
		}
	}

	c.closeSend()

	h.logger.Debug().Str("conn_id", c.connID).Int("total_conns", len(h.clients)).Msg("Client disconnected.")
}

// JoinGroup subscribes the client to a chat session's broadcasts.
func (h *Hub) JoinGroup(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.connID]; !ok {
		return
	}

	members, ok := h.groups[chatID]
	if !ok {
		members = make(map[string]*Client)
		h.groups[chatID] = members
	}
	members[c.connID] = c
	c.groups[chatID] = struct{}{}

	h.logger.Debug().Str("conn_id", c.connID).Str("chat_id", chatID).Msg("Client joined session group.")
}

// Send delivers one event to one connection. Unknown connections are silently
// dropped. Implements pairing.Dispatcher.
func (h *Hub) Send(connID string, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	data, err := NewEvent(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event.")
		return
	}

	c.queue(data)
}

// BroadcastSession delivers one event to every connection subscribed to the
// session. A session nobody joined (or that never existed) fans out to
// nobody; that is not an error.
func (h *Hub) BroadcastSession(chatID string, event string, payload any) {
	data, err := NewEvent(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event.")
		return
	}

	h.mu.RLock()
	members := h.groups[chatID]
	targets := make([]*Client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.queue(data)
	}
}

// Shutdown disconnects every client. Called during graceful server shutdown
// after the HTTP listener has stopped accepting connections.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}

	h.logger.Info().Int("closed", len(clients)).Msg("Hub shutdown complete.")
}
