/*
Package chat contains the WebSocket transport layer: connection lifecycle,
inbound event handling, and best-effort event fan-out.

This file defines the Client struct, representing an active WebSocket connection.
It manages the connection's lifecycle, the message communication loops (ReadPump
and WritePump), and the dispatch of inbound events to the hub and pairing service.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"blahbluh/internal/app/pairing"
	"blahbluh/internal/pkg/logx"
	"blahbluh/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-client outbound queue.
	sendQueueSize = 256
)

// Client represents one active WebSocket connection. A connection may belong
// to at most one logical user, bound by the register-user event; one user may
// hold many connections (multiple tabs or devices).
type Client struct {
	hub     *Hub
	service *pairing.Service
	conn    *websocket.Conn

	// connID uniquely identifies this transport connection.
	connID string

	// userID is the owning logical user, empty until register-user arrives.
	// Written and read only by the ReadPump goroutine.
	userID string

	// send queues outbound frames for the WritePump.
	send chan []byte

	// sendMu guards closed; queue and closeSend may race with each other.
	sendMu sync.Mutex
	closed bool

	// groups holds the chat session IDs this connection subscribed to.
	// Guarded by the hub's mutex.
	groups map[string]struct{}

	logger zerolog.Logger
}

// NewClient constructs a Client for a freshly upgraded connection.
func NewClient(hub *Hub, service *pairing.Service, conn *websocket.Conn) *Client {
	connID := randx.ConnID()

	clientLogger := logx.Logger().With().
		Str("component", "Client").
		Str("conn_id", connID).
		Logger()

	return &Client{
		hub:     hub,
		service: service,
		conn:    conn,
		connID:  connID,
		send:    make(chan []byte, sendQueueSize),
		groups:  make(map[string]struct{}),
		logger:  clientLogger,
	}
}

// ReadPump handles reading events from the WebSocket connection.
// It handles heartbeats (Pong), event parsing, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's
// ReadPump terminates: the hub drops the connection, the pairing service is
// told the connection detached, and the socket is closed.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)

	if c.userID != "" {
		c.service.Disconnect(c.userID, c.connID)
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent handles raw byte events received from the client.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var envelope Envelope

	if err := json.Unmarshal(messageBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Type {
	case EventRegisterUser:
		c.handleRegisterUser(envelope.Payload)

	case EventJoinChat:
		c.handleJoinChat(envelope.Payload)

	case EventSendMessage:
		c.handleSendMessage(envelope.Payload)

	default:
		c.logger.Warn().Str("event_type", envelope.Type).Msg("Client sent unsupported event type")
	}
}

// handleRegisterUser binds the connection to a logical user and attaches it
// in the connection registry. A user holding an active session gets the
// paired event re-sent on this connection.
func (c *Client) handleRegisterUser(payloadBytes json.RawMessage) {
	var payload RegisterUserPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid register-user payload")
		return
	}

	if payload.UserID == "" {
		return
	}

	if c.userID != "" && c.userID != payload.UserID {
		// Re-registering a connection under a different user would leak the
		// old registry entry. Detach first.
		c.service.Disconnect(c.userID, c.connID)
	}

	c.userID = payload.UserID
	c.service.Register(c.userID, c.connID)

	c.logger.Info().Str("user_id", c.userID).Msg("Connection registered to user.")
}

// handleJoinChat subscribes the connection to a session's broadcast group.
func (c *Client) handleJoinChat(payloadBytes json.RawMessage) {
	var payload JoinChatPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join-chat payload")
		return
	}

	if payload.ChatID == "" {
		return
	}

	c.hub.JoinGroup(payload.ChatID, c)
}

// handleSendMessage relays a chat message to the whole session. The server
// assigns the message ID and timestamp. Empty or oversized messages are
// dropped with a log; a chat ID nobody subscribed to fans out to nobody.
func (c *Client) handleSendMessage(payloadBytes json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid send-message payload")
		return
	}

	if payload.ChatID == "" || payload.Message == "" {
		return
	}

	if len(payload.Message) > MaxContentBytes {
		c.logger.Warn().
			Int("message_bytes", len(payload.Message)).
			Msg("Dropping oversized chat message")
		return
	}

	relayed := MessagePayload{
		ID:        randx.MessageID(),
		Message:   payload.Message,
		UserID:    payload.UserID,
		Username:  payload.Username,
		Timestamp: time.Now().UnixMilli(),
	}

	c.hub.metrics.MessagesTotal.Inc()
	c.hub.BroadcastSession(payload.ChatID, EventNewMessage, relayed)
}

// queue enqueues an outbound frame without blocking. Frames are dropped with
// a warning when the client cannot keep up or the channel is already closed.
func (c *Client) queue(data []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
	}
}

// closeSend closes the outbound queue exactly once, terminating the WritePump.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump handles writing events from the Client.send channel to the
// WebSocket connection and maintains the ping heartbeat.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
