/*
Package chat contains the WebSocket transport layer: connection lifecycle,
inbound event handling, and best-effort event fan-out.

This file defines the wire envelope exchanged with clients and the payload
shapes of the chat events.
*/
package chat

import (
	"encoding/json"
)

// Inbound event names sent by clients.
const (
	// EventRegisterUser binds the connection to a logical user.
	EventRegisterUser = "register-user"

	// EventJoinChat subscribes the connection to a chat session's broadcasts.
	EventJoinChat = "join-chat"

	// EventSendMessage relays a chat message to the whole session.
	EventSendMessage = "send-message"
)

// EventNewMessage is the outbound event carrying a relayed chat message.
const EventNewMessage = "new-message"

// MaxContentBytes is the maximum allowed size (in bytes) for chat message text.
const MaxContentBytes = 5000

// Envelope is the wire format of every WebSocket event, in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals an event envelope ready to write to a connection.
func NewEvent(eventType string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		Type:    eventType,
		Payload: payloadBytes,
	})
}

// RegisterUserPayload is the payload of an inbound register-user event.
type RegisterUserPayload struct {
	UserID string `json:"userId"`
}

// JoinChatPayload is the payload of an inbound join-chat event.
type JoinChatPayload struct {
	UserID string `json:"userId"`
	ChatID string `json:"chatId"`
}

// SendMessagePayload is the payload of an inbound send-message event.
type SendMessagePayload struct {
	ChatID   string `json:"chatId"`
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// MessagePayload is the payload of an outbound new-message event. The server
// assigns the ID and timestamp; clients must not trust their own clocks.
type MessagePayload struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}
