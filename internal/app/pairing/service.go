/*
Package pairing contains the core logic for matching anonymous users into
one-on-one chat sessions.

This file defines the Service struct, the single owner of all pairing state:
the waiting queue, the connection registry, the session directory, and the
set of known users. Every external operation takes the service mutex for its
whole read-then-mutate span, so pairing is atomic: a user is never observably
in both the queue and a session, or in neither mid-pairing.
*/
package pairing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"blahbluh/internal/app/user"
	"blahbluh/internal/pkg/logx"
	"blahbluh/internal/pkg/metrics"
	"blahbluh/internal/pkg/randx"
)

// Service coordinates queueing, pairing, and session lifecycle for anonymous
// one-on-one chats. All methods are safe for concurrent use.
type Service struct {
	mu sync.Mutex

	queue    *waitingQueue
	registry *connRegistry
	sessions *sessionDirectory

	// users records every identity ever minted or joined, for the lifetime
	// of the process. Partner requeue on leave/disconnect consults it.
	users map[string]user.User

	rng      *rand.Rand
	dispatch Dispatcher
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// JoinStatus is the result of a join-queue request.
type JoinStatus struct {
	User          user.User
	InQueue       bool
	QueuePosition int
}

// QueueStatus describes a user's current standing in the waiting queue.
type QueueStatus struct {
	InQueue       bool
	QueuePosition int
	TotalInQueue  int
}

// NewService constructs a Service that fans events out through the given
// dispatcher. A zero seed selects an entropy-based seed; a fixed seed makes
// queue extraction order reproducible.
func NewService(dispatch Dispatcher, m *metrics.Metrics, seed int64) *Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	serviceLogger := logx.Logger().With().Str("component", "PairingService").Logger()

	return &Service{
		queue:    newWaitingQueue(),
		registry: newConnRegistry(),
		sessions: newSessionDirectory(),
		users:    make(map[string]user.User),
		rng:      rand.New(rand.NewSource(seed)),
		dispatch: dispatch,
		metrics:  m,
		logger:   serviceLogger,
	}
}

// GenerateUser mints a new identity with a generated display name. It has no
// effect on queue or session state.
func (s *Service) GenerateUser() (user.User, error) {
	name, err := randx.DisplayName()
	if err != nil {
		return user.User{}, err
	}

	u := user.User{ID: randx.UserID(), Username: name}

	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()

	s.logger.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("Generated user.")
	return u, nil
}

// JoinQueue places the user in the waiting queue and immediately runs a
// pairing sweep. A missing identity or display name mints a fresh one. A user
// already holding a session is not re-queued; a user already queued keeps
// their position. The reported position reflects the state after the sweep,
// so a joiner paired by their own sweep reports InQueue false.
func (s *Service) JoinQueue(userID, username string) (JoinStatus, error) {
	if userID == "" || username == "" {
		name, err := randx.DisplayName()
		if err != nil {
			return JoinStatus{}, err
		}
		userID = randx.UserID()
		username = name
		s.logger.Info().Str("user_id", userID).Str("username", username).Msg("Auto-assigned user on join.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := user.User{ID: userID, Username: username}
	s.users[userID] = u

	if session, ok := s.sessions.lookup(userID); ok {
		s.logger.Info().
			Str("user_id", userID).
			Str("chat_id", session.ID).
			Msg("User already paired, not re-queuing.")
		return JoinStatus{User: u, InQueue: false, QueuePosition: 0}, nil
	}

	if s.queue.enqueue(u, time.Now()) {
		s.logger.Info().
			Str("user_id", userID).
			Int("queue_size", s.queue.len()).
			Msg("User added to waiting queue.")
	}

	s.sweepLocked()
	s.updateGaugesLocked()

	position := s.queue.position(userID)
	return JoinStatus{
		User:          u,
		InQueue:       position > 0,
		QueuePosition: position,
	}, nil
}

// LeaveQueue removes the user from the waiting queue. If the user holds a
// session instead, the session is dissolved, the partner is requeued and
// notified, and a pairing sweep runs.
func (s *Service) LeaveQueue(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.remove(userID) {
		s.logger.Info().
			Str("user_id", userID).
			Int("queue_size", s.queue.len()).
			Msg("User removed from waiting queue.")
	}

	if session, ok := s.sessions.lookup(userID); ok {
		s.logger.Info().
			Str("user_id", userID).
			Str("chat_id", session.ID).
			Msg("User leaving active chat.")

		s.dissolveSessionLocked(session, userID)
		s.sweepLocked()
	}

	s.updateGaugesLocked()
}

// Status reports the user's queue standing. Unknown users are simply not in
// the queue; no error.
func (s *Service) Status(userID string) QueueStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := s.queue.position(userID)
	return QueueStatus{
		InQueue:       position > 0,
		QueuePosition: position,
		TotalInQueue:  s.queue.len(),
	}
}

// Register attaches a transport connection to the user. If the user already
// holds a session, the paired event is re-sent to this connection only, so a
// reconnecting client recovers its chat state.
func (s *Service) Register(userID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.attach(userID, connID)
	s.updateGaugesLocked()

	s.logger.Debug().
		Str("user_id", userID).
		Str("conn_id", connID).
		Msg("Connection registered.")

	if session, ok := s.sessions.lookup(userID); ok {
		s.dispatch.Send(connID, EventPaired, pairedPayload(session))
	}
}

// Disconnect detaches a transport connection from the user. When the last
// connection drops, any active session is dissolved (partner requeued and
// notified) and a pairing sweep runs. Queue membership is left untouched so a
// quick reconnect keeps the user's place; the next sweep purges the entry if
// the user stays offline.
func (s *Service) Disconnect(userID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullyOffline := s.registry.detach(userID, connID)

	if !fullyOffline {
		s.logger.Debug().
			Str("user_id", userID).
			Str("conn_id", connID).
			Msg("Connection detached, user still has other connections.")
		s.updateGaugesLocked()
		return
	}

	s.logger.Info().Str("user_id", userID).Msg("User fully offline.")

	if session, ok := s.sessions.lookup(userID); ok {
		s.dissolveSessionLocked(session, userID)
		s.sweepLocked()
	}

	s.updateGaugesLocked()
}

// Sweep runs one pairing sweep: offline queue entries are purged, then
// waiting users are paired two at a time until fewer than two remain.
func (s *Service) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.updateGaugesLocked()
}

// Run re-invokes the pairing sweep at the given interval until the context is
// cancelled. It is the safety net for users enqueued while the queue
// momentarily had fewer than two eligible entries.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info().Dur("interval", interval).Msg("Pairing sweep loop started.")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			s.logger.Info().Msg("Pairing sweep loop stopped.")
			return
		}
	}
}

// sweepLocked purges offline entries and greedily forms pairs. Caller must
// hold s.mu.
func (s *Service) sweepLocked() {
	purged := s.queue.purgeOffline(s.registry.isOffline)
	if purged > 0 {
		s.metrics.QueuePurgedTotal.Add(float64(purged))
		s.logger.Info().
			Int("purged", purged).
			Int("queue_size", s.queue.len()).
			Msg("Purged offline users from waiting queue.")
	}

	for s.queue.len() >= 2 {
		first, _ := s.queue.popRandom(s.rng)
		second, _ := s.queue.popRandom(s.rng)

		session, err := s.sessions.create(first.User, second.User, time.Now())
		if err != nil {
			// Should be unreachable: both users were just removed from the
			// queue and queue/directory membership is exclusive. Skip the
			// pair rather than crash the sweep.
			s.logger.Error().
				Err(err).
				Str("user_a", first.User.ID).
				Str("user_b", second.User.ID).
				Msg("Session creation refused, dropping pair.")
			continue
		}

		s.metrics.PairingsTotal.Inc()
		s.logger.Info().
			Str("chat_id", session.ID).
			Str("user_a", first.User.ID).
			Str("user_b", second.User.ID).
			Int("queue_size", s.queue.len()).
			Msg("Paired users into chat session.")

		payload := pairedPayload(session)
		s.notifyUserLocked(first.User.ID, EventPaired, payload)
		s.notifyUserLocked(second.User.ID, EventPaired, payload)
	}
}

// dissolveSessionLocked tears down the session on behalf of leavingUserID,
// requeues the partner when still known, and notifies the partner. Caller
// must hold s.mu.
func (s *Service) dissolveSessionLocked(session *Session, leavingUserID string) {
	if _, ok := s.sessions.dissolve(session.ID); !ok {
		s.logger.Warn().
			Str("chat_id", session.ID).
			Msg("Session already dissolved.")
		return
	}

	partner, ok := session.Partner(leavingUserID)
	if !ok {
		s.logger.Error().
			Str("chat_id", session.ID).
			Str("user_id", leavingUserID).
			Msg("Dissolving session for a non-participant.")
		return
	}

	if known, exists := s.users[partner.ID]; exists {
		if s.queue.enqueue(known, time.Now()) {
			s.logger.Info().
				Str("user_id", partner.ID).
				Str("chat_id", session.ID).
				Msg("Requeued partner after session dissolved.")
		}
	}

	s.metrics.PartnerLeftTotal.Inc()
	s.notifyUserLocked(partner.ID, EventPartnerLeft, PartnerLeftPayload{ChatID: session.ID})
}

// notifyUserLocked fans an event out to every connection attached to userID.
// Users with no connections are silently skipped. Caller must hold s.mu; the
// dispatcher is required to be non-blocking.
func (s *Service) notifyUserLocked(userID, event string, payload any) {
	for _, connID := range s.registry.connections(userID) {
		s.dispatch.Send(connID, event, payload)
	}
}

// updateGaugesLocked refreshes the state gauges. Caller must hold s.mu.
func (s *Service) updateGaugesLocked() {
	s.metrics.QueueDepth.Set(float64(s.queue.len()))
	s.metrics.ActiveSessions.Set(float64(s.sessions.activeCount()))
	s.metrics.OpenConnections.Set(float64(s.registry.connectionCount()))
}

func pairedPayload(session *Session) PairedPayload {
	return PairedPayload{
		ChatID: session.ID,
		Users:  []user.User{session.Users[0], session.Users[1]},
	}
}
