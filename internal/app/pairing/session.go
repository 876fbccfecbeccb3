/*
Package pairing contains the core logic for matching anonymous users into
one-on-one chat sessions.

This file defines the session directory: the record of every active two-party
chat session and the per-user index into it. Both participants' entries are
created and destroyed together with the session record.
*/
package pairing

import (
	"fmt"
	"time"

	"blahbluh/internal/app/user"

	"blahbluh/internal/pkg/randx"
)

// Session is an active two-party chat relationship.
type Session struct {
	// ID is the unique session identifier, shared by both participants.
	ID string

	// Users holds the two participants, in pairing order.
	Users [2]user.User

	// CreatedAt is the session creation time.
	CreatedAt time.Time
}

// Partner returns the participant other than userID, or false when userID is
// not a participant.
func (s *Session) Partner(userID string) (user.User, bool) {
	switch userID {
	case s.Users[0].ID:
		return s.Users[1], true
	case s.Users[1].ID:
		return s.Users[0], true
	default:
		return user.User{}, false
	}
}

// sessionDirectory maps session IDs to session records and user IDs to the
// session they participate in. Not safe for concurrent use; the owning
// Service serializes access.
type sessionDirectory struct {
	sessions map[string]*Session
	byUser   map[string]*Session
}

func newSessionDirectory() *sessionDirectory {
	return &sessionDirectory{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]*Session),
	}
}

// create allocates a new session for the two users and indexes both
// participants. It fails if the users are not distinct or either already
// holds a session; the pairing engine only pairs users freshly removed from
// the queue, so a failure here indicates a broken invariant upstream.
func (d *sessionDirectory) create(a, b user.User, now time.Time) (*Session, error) {
	if a.ID == b.ID {
		return nil, fmt.Errorf("cannot pair user %s with itself", a.ID)
	}
	if existing, ok := d.byUser[a.ID]; ok {
		return nil, fmt.Errorf("user %s already in session %s", a.ID, existing.ID)
	}
	if existing, ok := d.byUser[b.ID]; ok {
		return nil, fmt.Errorf("user %s already in session %s", b.ID, existing.ID)
	}

	session := &Session{
		ID:        randx.SessionID(),
		Users:     [2]user.User{a, b},
		CreatedAt: now,
	}

	d.sessions[session.ID] = session
	d.byUser[a.ID] = session
	d.byUser[b.ID] = session

	return session, nil
}

// lookup returns the session userID participates in, if any.
func (d *sessionDirectory) lookup(userID string) (*Session, bool) {
	session, ok := d.byUser[userID]
	return session, ok
}

// dissolve removes the session record and both participants' entries.
// It returns the removed session, or false if the ID is unknown.
func (d *sessionDirectory) dissolve(sessionID string) (*Session, bool) {
	session, ok := d.sessions[sessionID]
	if !ok {
		return nil, false
	}

	delete(d.sessions, sessionID)
	delete(d.byUser, session.Users[0].ID)
	delete(d.byUser, session.Users[1].ID)

	return session, true
}

// activeCount returns the number of active sessions.
func (d *sessionDirectory) activeCount() int {
	return len(d.sessions)
}
