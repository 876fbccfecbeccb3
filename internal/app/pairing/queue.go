/*
Package pairing contains the core logic for matching anonymous users into
one-on-one chat sessions.

This file defines the waiting queue of users seeking a partner. Entries are
extracted uniformly at random rather than FIFO, so long-waiting users do not
systematically end up paired with each other.
*/
package pairing

import (
	"math/rand"
	"time"

	"blahbluh/internal/app/user"
)

// waitingEntry is one queued user awaiting a partner.
type waitingEntry struct {
	User     user.User
	JoinedAt time.Time
}

// waitingQueue holds users waiting to be paired. A user ID appears at most
// once. Not safe for concurrent use; the owning Service serializes access.
type waitingQueue struct {
	entries []waitingEntry
}

func newWaitingQueue() *waitingQueue {
	return &waitingQueue{}
}

// enqueue appends the user unless already present. A duplicate join keeps the
// entry's position and enqueue time but refreshes the display label, so a
// later pairing sees the name the user most recently supplied. It returns
// true if the user was added.
func (q *waitingQueue) enqueue(u user.User, now time.Time) bool {
	for i, e := range q.entries {
		if e.User.ID == u.ID {
			q.entries[i].User = u
			return false
		}
	}

	q.entries = append(q.entries, waitingEntry{User: u, JoinedAt: now})
	return true
}

// remove deletes the entry for userID, preserving the order of the rest.
// It returns true if an entry was removed.
func (q *waitingQueue) remove(userID string) bool {
	for i, e := range q.entries {
		if e.User.ID == userID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// position returns the 1-based queue position of userID, or 0 if absent.
func (q *waitingQueue) position(userID string) int {
	for i, e := range q.entries {
		if e.User.ID == userID {
			return i + 1
		}
	}
	return 0
}

// len returns the number of queued users.
func (q *waitingQueue) len() int {
	return len(q.entries)
}

// popRandom removes and returns one uniformly random entry.
func (q *waitingQueue) popRandom(rng *rand.Rand) (waitingEntry, bool) {
	if len(q.entries) == 0 {
		return waitingEntry{}, false
	}

	idx := rng.Intn(len(q.entries))
	entry := q.entries[idx]
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	return entry, true
}

// purgeOffline removes every entry whose user is offline per the given
// predicate and returns the number removed.
func (q *waitingQueue) purgeOffline(offline func(userID string) bool) int {
	kept := q.entries[:0]
	removed := 0

	for _, e := range q.entries {
		if offline(e.User.ID) {
			removed++
			continue
		}
		kept = append(kept, e)
	}

	q.entries = kept
	return removed
}
