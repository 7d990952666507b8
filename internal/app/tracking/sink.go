package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

// Event names written by the sink and its callers.
const (
	EventPageView       = "page_view"
	EventButtonClick    = "button_click"
	EventFAQAnswer      = "faq_answer"
	EventProposalAccept = "proposal_accept"
	EventPoemRequested  = "poem_requested"
	EventPoemReady      = "poem_ready"
	EventButtonEvade    = "button_evade"
)

// Sink writes telemetry without ever blocking or failing its caller.
type Sink struct {
	tracker   *Tracker
	events    domain.EventStore
	responses domain.QuizResponseStore
	log       *slog.Logger
	metrics   *observability.Metrics
	timeout   time.Duration

	wg sync.WaitGroup
}

type SinkOption func(*Sink)

func WithSinkLogger(l *slog.Logger) SinkOption {
	return func(s *Sink) { s.log = l }
}

func WithSinkMetrics(m *observability.Metrics) SinkOption {
	return func(s *Sink) { s.metrics = m }
}

// WithWriteTimeout bounds every background write.
func WithWriteTimeout(d time.Duration) SinkOption {
	return func(s *Sink) { s.timeout = d }
}

func NewSink(tracker *Tracker, events domain.EventStore, responses domain.QuizResponseStore, opts ...SinkOption) *Sink {
	s := &Sink{
		tracker:   tracker,
		events:    events,
		responses: responses,
		log:       observability.Logger(),
		timeout:   5 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Record appends an event for the session. It returns immediately.
func (s *Sink) Record(ctx context.Context, sessionID domain.SessionID, name string, payload map[string]any, meta domain.RequestMeta) {
	s.goWrite(ctx, name, func(ctx context.Context) error {
		sc := s.resolve(ctx, sessionID)
		return s.events.AppendEvent(ctx, &domain.Event{
			SessionID: sc.SessionID,
			Name:      name,
			Payload:   payload,
			IP:        sc.IP(),
			URL:       meta.URL,
			Path:      meta.Path,
		})
	})
}

// SaveQuizResponse appends the full answer set to the quiz response log. It returns immediately.
func (s *Sink) SaveQuizResponse(ctx context.Context, sessionID domain.SessionID, answers domain.QuizAnswers, meta domain.RequestMeta) {
	m := answers.Map()
	s.goWrite(ctx, "quiz_response", func(ctx context.Context) error {
		sc := s.resolve(ctx, sessionID)
		return s.responses.AppendQuizResponse(ctx, &domain.QuizResponse{
			SessionID: sc.SessionID,
			Answers:   m,
			IP:        sc.IP(),
			URL:       meta.URL,
			Path:      meta.Path,
		})
	})
}

func (s *Sink) TrackPageView(ctx context.Context, sessionID domain.SessionID, page string, meta domain.RequestMeta) {
	s.Record(ctx, sessionID, EventPageView, map[string]any{"page": page}, meta)
}

// Close waits for in-flight writes, or until ctx is done.
func (s *Sink) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		s.tracker.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) resolve(ctx context.Context, id domain.SessionID) SessionContext {
	if sc, ok := s.tracker.Lookup(id); ok {
		return sc
	}
	sc, err := s.tracker.EnsureSession(ctx, SessionRequest{ID: id})
	if err != nil {
		// The context is still usable; the session write failure was logged already.
		s.log.Debug("session resolve returned error", "session_id", id, "error", err)
	}
	return sc
}

func (s *Sink) goWrite(ctx context.Context, kind string, write func(context.Context) error) {
	log := observability.FromContext(ctx, s.log)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := write(wctx); err != nil {
			s.metrics.EventFailed(wctx, kind)
			log.Error("telemetry write failed", "kind", kind, "error", err, "error_kind", domain.KindOf(err))
			return
		}
		s.metrics.EventRecorded(wctx, kind)
	}()
}
