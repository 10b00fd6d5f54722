package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"restyle/internal/domain"
)

// Store keeps sessions in memory behind one mutex. Expiry is lazy: stale
// entries are dropped when touched or when capacity is needed, never by a
// background sweeper.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func NewStore(ttl time.Duration, capacity int) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if capacity <= 0 {
		capacity = 512
	}
	return &Store{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Create registers a new empty session. When the store is at capacity after
// dropping expired entries, it refuses with domain.ErrSessionLimit.
func (s *Store) Create(locale string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	if len(s.sessions) >= s.capacity {
		return nil, domain.ErrSessionLimit
	}
	sess := domain.NewSession(uuid.NewString(), locale, s.now())
	s.sessions[sess.ID] = sess
	return sess.Clone(), nil
}

// Snapshot returns a deep copy of the session for serialization.
func (s *Store) Snapshot(id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// Delete drops a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions, dropping expired ones first.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	return len(s.sessions)
}

// Begin claims the session for one action. While a claim is held every other
// Begin fails with domain.ErrActionInFlight; this is the mutual exclusion
// the flow relies on, not a UI convention. The returned copy reflects the
// session at claim time.
func (s *Store) Begin(id string, stage domain.Stage, message string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.SessionWorking {
		return nil, domain.ErrActionInFlight
	}
	sess.Status = domain.SessionWorking
	sess.Stage = stage
	sess.StatusMessage = message
	sess.LastError = ""
	sess.UpdatedAt = s.now()
	return sess.Clone(), nil
}

// Progress updates the stage banner of an in-flight action.
func (s *Store) Progress(id string, stage domain.Stage, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return err
	}
	sess.Stage = stage
	sess.StatusMessage = message
	sess.UpdatedAt = s.now()
	return nil
}

// Finish releases the claim taken by Begin, applying the final mutation
// under the store lock. It returns the resulting snapshot.
func (s *Store) Finish(id string, apply func(*domain.Session)) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if apply != nil {
		apply(sess)
	}
	sess.Status = domain.SessionIdle
	sess.Stage = ""
	sess.UpdatedAt = s.now()
	return sess.Clone(), nil
}

// Update applies a mutation to an idle session (upload, select, reset). It
// refuses while an action is in flight.
func (s *Store) Update(id string, apply func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.SessionWorking {
		return nil, domain.ErrActionInFlight
	}
	if apply != nil {
		if err := apply(sess); err != nil {
			return nil, err
		}
	}
	sess.UpdatedAt = s.now()
	return sess.Clone(), nil
}

func (s *Store) getLocked(id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.expiredLocked(sess) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) expiredLocked(sess *domain.Session) bool {
	return s.now().Sub(sess.UpdatedAt) > s.ttl
}

func (s *Store) purgeExpiredLocked() {
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
		}
	}
}
