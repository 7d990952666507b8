package dashboard_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/valentine-quest/internal/adapters/storage/memory"
	"github.com/PabloGalante/valentine-quest/internal/app/dashboard"
	"github.com/PabloGalante/valentine-quest/internal/domain"
)

type brokenEvents struct{}

func (brokenEvents) AppendEvent(context.Context, *domain.Event) error { return nil }

func (brokenEvents) ListEvents(context.Context, int) ([]*domain.Event, error) {
	return nil, domain.NewAdapterError(domain.KindStorage, "list events", errors.New("permission denied"))
}

func TestGet_AppliesLimits(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	events := memory.NewEventStore()
	responses := memory.NewQuizResponseStore()

	for i := 0; i < 60; i++ {
		id := domain.SessionID(fmt.Sprintf("s-%02d", i))
		require.NoError(t, sessions.UpsertSession(ctx, &domain.Session{ID: id}))
		require.NoError(t, responses.AppendQuizResponse(ctx, &domain.QuizResponse{SessionID: id}))
		for j := 0; j < 2; j++ {
			require.NoError(t, events.AppendEvent(ctx, &domain.Event{SessionID: id, Name: "page_view"}))
		}
	}

	d := dashboard.NewService(sessions, events, responses, nil).Get(ctx)

	assert.Len(t, d.Sessions, dashboard.SessionLimit)
	assert.Len(t, d.Events, dashboard.EventLimit)
	assert.Len(t, d.QuizResponses, dashboard.ResponseLimit)
	assert.Equal(t, dashboard.Totals{Visits: 50, Submissions: 50}, d.Totals)
	assert.Equal(t, domain.SessionID("s-59"), d.Sessions[0].ID, "most recent first")
}

func TestGet_EmptyStores(t *testing.T) {
	d := dashboard.NewService(memory.NewSessionStore(), memory.NewEventStore(), memory.NewQuizResponseStore(), nil).
		Get(context.Background())

	assert.NotNil(t, d.Sessions)
	assert.NotNil(t, d.Events)
	assert.NotNil(t, d.QuizResponses)
	assert.Zero(t, d.Totals)
}

func TestGet_AnyFailureYieldsEmptyDashboard(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	require.NoError(t, sessions.UpsertSession(ctx, &domain.Session{ID: "s-1"}))

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	d := dashboard.NewService(sessions, brokenEvents{}, memory.NewQuizResponseStore(), log).Get(ctx)

	assert.Empty(t, d.Sessions)
	assert.Empty(t, d.Events)
	assert.Empty(t, d.QuizResponses)
	assert.Contains(t, buf.String(), "dashboard read failed")
	assert.Contains(t, buf.String(), `"kind":"storage"`)
}
