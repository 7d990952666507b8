package experience

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/valentine-quest/internal/app/evasion"
	"github.com/PabloGalante/valentine-quest/internal/app/tracking"
	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

// Service keeps one Flow per session id.
type Service struct {
	girlfriendName string
	deps           FlowDeps
	rnd            evasion.Rand

	mu     sync.Mutex
	flows  map[domain.SessionID]*Flow
	closed bool
}

type ServiceOption func(*Service)

// WithEvasionRand fixes the randomness of the decline button.
func WithEvasionRand(r evasion.Rand) ServiceOption {
	return func(s *Service) { s.rnd = r }
}

func NewService(girlfriendName string, deps FlowDeps, opts ...ServiceOption) *Service {
	s := &Service{
		girlfriendName: girlfriendName,
		deps:           deps.withDefaults(),
		flows:          make(map[domain.SessionID]*Flow),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GirlfriendName is the fixed display name every flow starts with.
func (s *Service) GirlfriendName() string {
	return s.girlfriendName
}

// Flow returns the session's flow, creating it in INTRO on first use.
func (s *Service) Flow(ctx context.Context, id domain.SessionID, meta domain.RequestMeta) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrFlowClosed
	}
	if f, ok := s.flows[id]; ok {
		return f, nil
	}

	f := NewFlow(id, s.girlfriendName, s.deps)
	s.flows[id] = f

	observability.FromContext(observability.WithSessionID(ctx, string(id)), s.deps.Logger).Info("experience started")
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.Record(ctx, id, tracking.EventPageView, map[string]any{"page": string(StateIntro)}, meta)
	}
	return f, nil
}

// View returns the current view for the session.
func (s *Service) View(ctx context.Context, id domain.SessionID, meta domain.RequestMeta) (View, error) {
	f, err := s.Flow(ctx, id, meta)
	if err != nil {
		return View{}, err
	}
	return f.View(), nil
}

// Dispatch applies a to the session's flow and returns the resulting view.
func (s *Service) Dispatch(ctx context.Context, id domain.SessionID, a Action, meta domain.RequestMeta) (View, error) {
	f, err := s.Flow(ctx, id, meta)
	if err != nil {
		return View{}, err
	}
	if _, err := f.Dispatch(ctx, a, meta); err != nil {
		return f.View(), fmt.Errorf("dispatch %s: %w", a.Kind, err)
	}
	return f.View(), nil
}

// Decline moves the "No" button. Only available on the proposal screen;
// it never changes the state, so acceptance stays reachable.
func (s *Service) Decline(ctx context.Context, id domain.SessionID, vp evasion.Viewport, scale float64, meta domain.RequestMeta) (evasion.Move, error) {
	f, err := s.Flow(ctx, id, meta)
	if err != nil {
		return evasion.Move{}, err
	}
	if st := f.Snapshot().State; st != StateProposal {
		return evasion.Move{}, fmt.Errorf("%w: decline in %s", ErrInvalidTransition, st)
	}

	m := evasion.Next(vp, scale, s.rnd)
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.Record(ctx, id, tracking.EventButtonEvade, map[string]any{
			"id": "proposal_no",
			"x":  m.X,
			"y":  m.Y,
		}, meta)
	}
	return m, nil
}

// Close tears down every flow.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	flows := make([]*Flow, 0, len(s.flows))
	for _, f := range s.flows {
		flows = append(flows, f)
	}
	s.mu.Unlock()

	for _, f := range flows {
		f.Close()
	}
}
