// Package memory holds session bindings in process memory. It is the default
// backend for single-node deployments and the test vehicle.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

// SessionStore maps session ids to identities behind an RWMutex. Expired
// entries resolve to absence immediately; the janitor reclaims their memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	clock    clockwork.Clock
}

// NewSessionStore builds an empty store. A nil clock selects the real one.
func NewSessionStore(clock clockwork.Clock) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		clock:    clock,
	}
}

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || session.IsExpired(s.clock.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = s.clock.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}

var _ repository.SessionStore = (*SessionStore)(nil)
