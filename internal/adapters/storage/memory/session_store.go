package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

// SessionStore is an in-memory domain.SessionStore.
// It is NOT persistent and is only suitable for development / local mode.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	order    []domain.SessionID
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.Session),
		now:      time.Now,
	}
}

// UpsertSession stores the session. On an existing record CreatedAt is kept and
// every other field is merged in, like a Firestore merge write.
func (s *SessionStore) UpsertSession(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("memory UpsertSession: session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cp := *session
	cp.LastSeenAt = now

	if existing, ok := s.sessions[session.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = now
		s.order = append(s.order, session.ID)
	}

	s.sessions[session.ID] = &cp
	return nil
}

func (s *SessionStore) TouchSession(_ context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.LastSeenAt = s.now()
	return nil
}

// GetSession returns a copy of a stored session.
func (s *SessionStore) GetSession(_ context.Context, id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// ListSessions returns up to limit sessions, most recent first.
// If limit <= 0, returns all.
func (s *SessionStore) ListSessions(_ context.Context, limit int) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Session, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.sessions[s.order[i]]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len is the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
