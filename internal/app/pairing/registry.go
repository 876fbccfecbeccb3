/*
Package pairing contains the core logic for matching anonymous users into
one-on-one chat sessions.

This file defines the connection registry, which tracks the set of live
transport connections belonging to each logical user. A user may hold several
connections at once (multiple tabs or devices); the user counts as offline only
when the set is empty.
*/
package pairing

// connRegistry maps a logical user ID to the set of connection IDs currently
// representing that user. The entry is removed entirely when the last
// connection detaches, so a never-registered user and a fully disconnected
// user are both reported as offline.
//
// The registry is not safe for concurrent use on its own; the owning Service
// serializes all access behind its mutex.
type connRegistry struct {
	conns map[string]map[string]struct{}

	// total is the number of attached connections across all users.
	total int
}

func newConnRegistry() *connRegistry {
	return &connRegistry{
		conns: make(map[string]map[string]struct{}),
	}
}

// attach adds connID to userID's connection set, creating the set if absent.
// Attaching the same connection twice is a no-op.
func (r *connRegistry) attach(userID, connID string) {
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		r.conns[userID] = set
	}

	if _, exists := set[connID]; !exists {
		set[connID] = struct{}{}
		r.total++
	}
}

// detach removes connID from userID's connection set and drops the entry when
// the set empties. It returns true if the user is fully offline afterwards.
func (r *connRegistry) detach(userID, connID string) bool {
	set, ok := r.conns[userID]
	if !ok {
		return true
	}

	if _, exists := set[connID]; exists {
		delete(set, connID)
		r.total--
	}

	if len(set) == 0 {
		delete(r.conns, userID)
		return true
	}

	return false
}

// isOffline reports whether the user currently has no attached connections.
// A user ID never seen by the registry is offline.
func (r *connRegistry) isOffline(userID string) bool {
	return len(r.conns[userID]) == 0
}

// connections returns a snapshot of the connection IDs attached to userID.
func (r *connRegistry) connections(userID string) []string {
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}

	ids := make([]string, 0, len(set))
	for connID := range set {
		ids = append(ids, connID)
	}
	return ids
}

// connectionCount returns the number of attached connections across all users.
func (r *connRegistry) connectionCount() int {
	return r.total
}
