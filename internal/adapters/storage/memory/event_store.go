package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

type EventStore struct {
	mu     sync.RWMutex
	events []*domain.Event
	now    func() time.Time
}

func NewEventStore() *EventStore {
	return &EventStore{now: time.Now}
}

// AppendEvent stores a copy of the event, stamped at write time.
func (s *EventStore) AppendEvent(_ context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *event
	if cp.ID == "" {
		cp.ID = domain.EventID(uuid.NewString())
	}
	cp.Timestamp = s.now()
	s.events = append(s.events, &cp)
	return nil
}

// ListEvents returns up to limit events, most recent first.
func (s *EventStore) ListEvents(_ context.Context, limit int) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Event, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		out = append(out, s.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// EventsBySession returns the session's events in write order.
func (s *EventStore) EventsBySession(id domain.SessionID) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Event
	for _, e := range s.events {
		if e.SessionID == id {
			out = append(out, e)
		}
	}
	return out
}
