package experience

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PabloGalante/valentine-quest/internal/app/tracking"
	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

// Telemetry is the fire-and-forget sink the flow reports to.
type Telemetry interface {
	Record(ctx context.Context, sessionID domain.SessionID, name string, payload map[string]any, meta domain.RequestMeta)
	SaveQuizResponse(ctx context.Context, sessionID domain.SessionID, answers domain.QuizAnswers, meta domain.RequestMeta)
}

// MessageGenerator produces the proposal poem. It must always return a usable text.
type MessageGenerator interface {
	Generate(ctx context.Context, answers domain.QuizAnswers) string
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler uses time.AfterFunc.
var SystemScheduler Scheduler = clockScheduler{}

// FlowDeps are the collaborators shared by every flow.
type FlowDeps struct {
	Telemetry     Telemetry
	Generator     MessageGenerator
	Scheduler     Scheduler
	SuspenseDelay time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

func (d FlowDeps) withDefaults() FlowDeps {
	if d.Scheduler == nil {
		d.Scheduler = SystemScheduler
	}
	if d.SuspenseDelay <= 0 {
		d.SuspenseDelay = 4500 * time.Millisecond
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = observability.Logger()
	}
	return d
}

// Flow owns the snapshot of one session and executes transition effects.
type Flow struct {
	id   domain.SessionID
	deps FlowDeps

	mu        sync.Mutex
	snap      Snapshot
	timer     Timer
	lastMeta  domain.RequestMeta
	generated bool
	closed    bool

	genCtx    context.Context
	genCancel context.CancelFunc
	gen       sync.WaitGroup
}

// NewFlow creates a flow in INTRO.
func NewFlow(id domain.SessionID, girlfriendName string, deps FlowDeps) *Flow {
	deps = deps.withDefaults()
	genCtx, cancel := context.WithCancel(context.Background())
	return &Flow{
		id:        id,
		deps:      deps,
		snap:      NewSnapshot(girlfriendName, deps.Now()),
		genCtx:    genCtx,
		genCancel: cancel,
	}
}

func (f *Flow) SessionID() domain.SessionID {
	return f.id
}

// Snapshot returns a copy of the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// View renders the current state for clients.
func (f *Flow) View() View {
	f.mu.Lock()
	snap := f.snap
	f.mu.Unlock()
	return NewView(snap, f.deps.Now())
}

// Dispatch applies a user action. On error the state is unchanged.
func (f *Flow) Dispatch(ctx context.Context, a Action, meta domain.RequestMeta) (Snapshot, error) {
	if a.Kind == ActionSuspenseElapsed {
		return f.Snapshot(), ErrInvalidTransition
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return f.snap, ErrFlowClosed
	}
	f.lastMeta = meta
	if err := f.applyLocked(ctx, a, meta); err != nil {
		return f.snap, err
	}
	return f.snap, nil
}

// Close stops the suspense timer and cancels a pending generation.
// No transition happens after Close returns.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.genCancel()
	f.mu.Unlock()

	f.gen.Wait()
}

func (f *Flow) applyLocked(ctx context.Context, a Action, meta domain.RequestMeta) error {
	prev := f.snap.State
	next, effects, err := Transition(f.snap, a, f.deps.Now())
	if err != nil {
		return err
	}
	f.snap = next

	log := observability.FromContext(observability.WithSessionID(ctx, string(f.id)), f.deps.Logger)
	if next.State != prev {
		f.deps.Metrics.Transition(ctx, string(next.State))
		log.Info("experience transition", "from", prev, "to", next.State, "action", a.Kind)
	}

	for _, e := range effects {
		f.runLocked(ctx, e, meta, log)
	}
	return nil
}

func (f *Flow) runLocked(ctx context.Context, e Effect, meta domain.RequestMeta, log *slog.Logger) {
	switch e.Kind {
	case EffectTrack:
		f.record(ctx, e.Event, e.Payload, meta)

	case EffectSaveResponse:
		if f.deps.Telemetry != nil {
			f.deps.Telemetry.SaveQuizResponse(ctx, f.id, e.Answers, meta)
		}

	case EffectScheduleSuspense:
		if f.timer != nil {
			f.timer.Stop()
		}
		f.timer = f.deps.Scheduler.AfterFunc(f.deps.SuspenseDelay, f.suspenseElapsed)

	case EffectGenerateMessage:
		if f.generated {
			log.Warn("message generation already started")
			return
		}
		f.generated = true
		f.gen.Add(1)
		go f.generate(observability.WithSessionID(f.genCtx, string(f.id)), e.Answers, meta)
	}
}

func (f *Flow) suspenseElapsed() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timer = nil
	if f.closed {
		return
	}
	if err := f.applyLocked(context.Background(), Action{Kind: ActionSuspenseElapsed}, f.lastMeta); err != nil {
		f.deps.Logger.Warn("suspense transition failed", "session_id", f.id, "error", err)
	}
}

func (f *Flow) generate(ctx context.Context, answers domain.QuizAnswers, meta domain.RequestMeta) {
	defer f.gen.Done()

	var text string
	if f.deps.Generator != nil {
		text = f.deps.Generator.Generate(ctx, answers)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.snap.Message = text
	f.snap.MessageReady = true
	f.record(ctx, tracking.EventPoemReady, map[string]any{"length": utf8.RuneCountInString(text)}, meta)
}

func (f *Flow) record(ctx context.Context, name string, payload map[string]any, meta domain.RequestMeta) {
	if f.deps.Telemetry == nil {
		return
	}
	f.deps.Telemetry.Record(ctx, f.id, name, payload, meta)
}
