// Package tracking owns the per-browser session context and the telemetry sink.
package tracking

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

// SessionRequest is what the client knows about itself when a session is ensured.
type SessionRequest struct {
	ID         domain.SessionID
	ClientIP   string
	DeviceInfo domain.DeviceInfo
	Referrer   string
	LandingURL string
}

// SessionContext is the resolved session shared by every telemetry write.
type SessionContext struct {
	SessionID  domain.SessionID
	IPInfo     *domain.IPInfo
	DeviceInfo domain.DeviceInfo
}

// IP returns the resolved client IP, "" when unknown.
func (c SessionContext) IP() string {
	if c.IPInfo == nil {
		return ""
	}
	return c.IPInfo.IP
}

// Tracker establishes session contexts. The first caller for a session id runs
// the initialization (geolocation + one persisted record); every other caller,
// concurrent or later, receives the same context.
type Tracker struct {
	store   domain.SessionStore
	geo     domain.GeoLocator
	log     *slog.Logger
	metrics *observability.Metrics
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	sessions map[domain.SessionID]*memo

	touches sync.WaitGroup
}

// memo is a resolved context plus whether its record has been written.
// Refreshes wait for the record, otherwise they would race the first write.
type memo struct {
	sc        SessionContext
	persisted bool
}

type TrackerOption func(*Tracker)

func WithTrackerLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) { t.log = l }
}

func WithTrackerMetrics(m *observability.Metrics) TrackerOption {
	return func(t *Tracker) { t.metrics = m }
}

// WithInitTimeout bounds the initialization work (lookup + write).
func WithInitTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.timeout = d }
}

func NewTracker(store domain.SessionStore, geo domain.GeoLocator, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:    store,
		geo:      geo,
		log:      observability.Logger(),
		timeout:  10 * time.Second,
		now:      time.Now,
		sessions: make(map[domain.SessionID]*memo),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// EnsureSession returns the context for req.ID, creating it on first use.
// Ids are opaque; only an empty or out-of-bound id gets a fresh one. A failed geolocation lookup is not
// an error; a failed session write is returned but the context is still usable.
func (t *Tracker) EnsureSession(ctx context.Context, req SessionRequest) (SessionContext, error) {
	id := normalizeID(req.ID)
	req.ID = id

	if m, ok := t.memoFor(id); ok {
		if m.persisted {
			t.touch(id)
		}
		return m.sc, nil
	}

	// Initialization is shared by every waiter, so it must not die with the
	// first caller's request.
	v, err, _ := t.group.Do(string(id), func() (any, error) {
		if sc, ok := t.cached(id); ok {
			return sc, nil
		}
		initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()
		return t.initialize(initCtx, req)
	})
	sc, _ := v.(SessionContext)
	return sc, err
}

// Lookup returns a memoized context without initializing one.
func (t *Tracker) Lookup(id domain.SessionID) (SessionContext, bool) {
	return t.cached(id)
}

func (t *Tracker) cached(id domain.SessionID) (SessionContext, bool) {
	m, ok := t.memoFor(id)
	return m.sc, ok
}

func (t *Tracker) memoFor(id domain.SessionID) (memo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.sessions[id]
	if !ok {
		return memo{}, false
	}
	return *m, true
}

func (t *Tracker) initialize(ctx context.Context, req SessionRequest) (SessionContext, error) {
	ctx, span := observability.Tracer().Start(ctx, "tracking.init_session")
	defer span.End()

	log := observability.FromContext(ctx, t.log).With("session_id", req.ID)

	ipInfo, err := t.geo.Lookup(ctx, req.ClientIP)
	if err != nil {
		log.Warn("geolocation lookup failed", "error", err, "kind", domain.KindOf(err))
		ipInfo = nil
	}

	sc := SessionContext{
		SessionID:  req.ID,
		IPInfo:     ipInfo,
		DeviceInfo: req.DeviceInfo,
	}

	// Memoize before writing: a failed write must not cause a second record
	// attempt from a concurrent caller.
	m := &memo{sc: sc}
	t.mu.Lock()
	t.sessions[req.ID] = m
	t.mu.Unlock()

	now := t.now()
	session := &domain.Session{
		ID:         req.ID,
		CreatedAt:  now,
		LastSeenAt: now,
		IPInfo:     ipInfo,
		DeviceInfo: req.DeviceInfo,
		Referrer:   req.Referrer,
		LandingURL: req.LandingURL,
	}
	if err := t.store.UpsertSession(ctx, session); err != nil {
		log.Error("session persist failed", "error", err, "kind", domain.KindOf(err))
		span.RecordError(err)
		return sc, err
	}
	t.mu.Lock()
	m.persisted = true
	t.mu.Unlock()

	t.metrics.SessionCreated(ctx, ipInfo != nil)
	log.Info("session initialised", "located", ipInfo != nil)
	return sc, nil
}

func (t *Tracker) touch(id domain.SessionID) {
	t.touches.Add(1)
	go func() {
		defer t.touches.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := t.store.TouchSession(ctx, id); err != nil {
			t.log.Warn("session touch failed", "session_id", id, "error", err)
		}
	}()
}

// Wait blocks until background lastSeenAt refreshes have finished.
func (t *Tracker) Wait() {
	t.touches.Wait()
}

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

func normalizeID(id domain.SessionID) domain.SessionID {
	if !validID.MatchString(string(id)) {
		return domain.SessionID(uuid.NewString())
	}
	return id
}
