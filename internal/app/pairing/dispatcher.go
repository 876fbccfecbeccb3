/*
Package pairing contains the core logic for matching anonymous users into
one-on-one chat sessions.

This file defines the outbound event surface of the pairing service: the
Dispatcher interface it fans events out through, the event names, and the
event payload shapes.
*/
package pairing

import "blahbluh/internal/app/user"

// Event names sent to clients by the pairing service.
const (
	// EventPaired tells both participants a chat session was created for them.
	EventPaired = "chat-paired"

	// EventPartnerLeft tells the surviving participant their partner left or
	// went fully offline.
	EventPartnerLeft = "partner-left"
)

// Dispatcher delivers one event to one transport connection.
//
// Implementations must not block: delivery is best-effort and the service may
// call Send while holding its internal lock. Events for connections that no
// longer exist are silently dropped.
type Dispatcher interface {
	Send(connID string, event string, payload any)
}

// PairedPayload is the payload of an EventPaired notification.
type PairedPayload struct {
	ChatID string      `json:"chatId"`
	Users  []user.User `json:"users"`
}

// PartnerLeftPayload is the payload of an EventPartnerLeft notification.
type PartnerLeftPayload struct {
	ChatID string `json:"chatId"`
}
