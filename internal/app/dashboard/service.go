package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

const (
	SessionLimit  = 50
	EventLimit    = 100
	ResponseLimit = 50
)

// Dashboard is the read model of the admin page.
type Dashboard struct {
	Sessions      []*domain.Session      `json:"sessions"`
	Events        []*domain.Event        `json:"events"`
	QuizResponses []*domain.QuizResponse `json:"quiz_responses"`
	Totals        Totals                 `json:"totals"`
}

// Totals counts what the lists contain, not the whole collections.
type Totals struct {
	Visits      int `json:"visits"`
	Submissions int `json:"submissions"`
}

// Service holds the logic of reading the three logs.
type Service struct {
	sessions  domain.SessionStore
	events    domain.EventStore
	responses domain.QuizResponseStore
	log       *slog.Logger
}

// NewService creates a dashboard service. A nil logger uses the package logger.
func NewService(sessions domain.SessionStore, events domain.EventStore, responses domain.QuizResponseStore, log *slog.Logger) *Service {
	if log == nil {
		log = observability.Logger()
	}
	return &Service{
		sessions:  sessions,
		events:    events,
		responses: responses,
		log:       log,
	}
}

// Get reads the most recent sessions, events and quiz responses concurrently.
// If any read fails the whole dashboard is empty; the error is only logged.
func (s *Service) Get(ctx context.Context) Dashboard {
	ctx, span := observability.Tracer().Start(ctx, "dashboard.get")
	defer span.End()

	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Sessions, err = s.sessions.ListSessions(gctx, SessionLimit)
		return err
	})
	g.Go(func() (err error) {
		d.Events, err = s.events.ListEvents(gctx, EventLimit)
		return err
	})
	g.Go(func() (err error) {
		d.QuizResponses, err = s.responses.ListQuizResponses(gctx, ResponseLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		observability.FromContext(ctx, s.log).Error("dashboard read failed", "error", err, "kind", domain.KindOf(err))
		span.RecordError(err)
		return empty()
	}

	d.Sessions = truncate(d.Sessions, SessionLimit)
	d.Events = truncate(d.Events, EventLimit)
	d.QuizResponses = truncate(d.QuizResponses, ResponseLimit)
	if d.Sessions == nil {
		d.Sessions = []*domain.Session{}
	}
	if d.Events == nil {
		d.Events = []*domain.Event{}
	}
	if d.QuizResponses == nil {
		d.QuizResponses = []*domain.QuizResponse{}
	}
	d.Totals = Totals{Visits: len(d.Sessions), Submissions: len(d.QuizResponses)}
	return d
}

func empty() Dashboard {
	return Dashboard{
		Sessions:      []*domain.Session{},
		Events:        []*domain.Event{},
		QuizResponses: []*domain.QuizResponse{},
	}
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
