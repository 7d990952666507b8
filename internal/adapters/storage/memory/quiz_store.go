package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

// QuizResponseStore is an in-memory domain.QuizResponseStore.
type QuizResponseStore struct {
	mu        sync.RWMutex
	responses []*domain.QuizResponse
	now       func() time.Time
}

func NewQuizResponseStore() *QuizResponseStore {
	return &QuizResponseStore{now: time.Now}
}

func (s *QuizResponseStore) AppendQuizResponse(_ context.Context, resp *domain.QuizResponse) error {
	if resp == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *resp
	if cp.ID == "" {
		cp.ID = domain.ResponseID(uuid.NewString())
	}
	cp.Answers = make(map[string]string, len(resp.Answers))
	for k, v := range resp.Answers {
		cp.Answers[k] = v
	}
	cp.Timestamp = s.now()
	s.responses = append(s.responses, &cp)
	return nil
}

// ListQuizResponses returns the last `limit` responses, most recent first.
// If limit <= 0, returns all.
func (s *QuizResponseStore) ListQuizResponses(_ context.Context, limit int) ([]*domain.QuizResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.responses) {
		limit = len(s.responses)
	}

	out := make([]*domain.QuizResponse, 0, limit)
	for i := len(s.responses) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.responses[i])
	}
	return out, nil
}
