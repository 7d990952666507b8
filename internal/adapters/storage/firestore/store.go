package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

const (
	sessionsCollection = "sessions"
	eventsCollection   = "events"
	faqCollection      = "faq_responses"
)

// Store implements SessionStore, EventStore and QuizResponseStore on Firestore.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (VSP_GCP_PROJECT). RPCs are traced through the global
// tracer provider.
func NewStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	opts = append([]option.ClientOption{
		option.WithGRPCDialOption(grpc.WithStatsHandler(otelgrpc.NewClientHandler())),
	}, opts...)
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection(sessionsCollection)
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return domain.NewAdapterError(domain.KindTimeout, op, err)
	}
	return domain.NewAdapterError(domain.KindStorage, op, err)
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type ipInfoDoc struct {
	IP        string  `firestore:"ip"`
	City      string  `firestore:"city"`
	Region    string  `firestore:"region"`
	Country   string  `firestore:"country_name"`
	Postal    string  `firestore:"postal"`
	Latitude  float64 `firestore:"latitude"`
	Longitude float64 `firestore:"longitude"`
	Timezone  string  `firestore:"timezone"`
	Org       string  `firestore:"org"`
}

type sessionDoc struct {
	SessionID  string         `firestore:"sessionId"`
	CreatedAt  time.Time      `firestore:"createdAt"`
	LastSeenAt time.Time      `firestore:"lastSeenAt"`
	IPInfo     *ipInfoDoc     `firestore:"ipInfo"`
	DeviceInfo map[string]any `firestore:"deviceInfo"`
	Referrer   *string        `firestore:"referrer"`
	LandingURL string         `firestore:"landingUrl"`
}

type eventDoc struct {
	SessionID string         `firestore:"sessionId"`
	Name      string         `firestore:"name"`
	Payload   map[string]any `firestore:"payload"`
	IP        *string        `firestore:"ip"`
	URL       string         `firestore:"url"`
	Path      string         `firestore:"path"`
	Timestamp time.Time      `firestore:"timestamp,serverTimestamp"`
}

type faqResponseDoc struct {
	SessionID string            `firestore:"sessionId"`
	Answers   map[string]string `firestore:"answers"`
	IP        *string           `firestore:"ip"`
	URL       string            `firestore:"url"`
	Path      string            `firestore:"path"`
	Timestamp time.Time         `firestore:"timestamp,serverTimestamp"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toIPInfoDoc(in *domain.IPInfo) *ipInfoDoc {
	if in == nil {
		return nil
	}
	d := ipInfoDoc(*in)
	return &d
}

func fromIPInfoDoc(in *ipInfoDoc) *domain.IPInfo {
	if in == nil {
		return nil
	}
	d := domain.IPInfo(*in)
	return &d
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

// UpsertSession merges the session record. createdAt is only written when the
// document does not exist yet, so page reloads keep the original value.
func (s *Store) UpsertSession(ctx context.Context, session *domain.Session) error {
	ref := s.sessionDoc(session.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		exists := err == nil && snap.Exists()
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		doc := map[string]interface{}{
			"sessionId":  string(session.ID),
			"lastSeenAt": firestore.ServerTimestamp,
			"ipInfo":     toIPInfoDoc(session.IPInfo),
			"deviceInfo": map[string]any(session.DeviceInfo),
			"referrer":   nullable(session.Referrer),
			"landingUrl": session.LandingURL,
		}
		if !exists {
			doc["createdAt"] = firestore.ServerTimestamp
		}
		return tx.Set(ref, doc, firestore.MergeAll)
	})
	if err != nil {
		return storageErr("firestore UpsertSession", err)
	}
	return nil
}

func (s *Store) TouchSession(ctx context.Context, id domain.SessionID) error {
	_, err := s.sessionDoc(id).Update(ctx, []firestore.Update{
		{Path: "lastSeenAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.NewAdapterError(domain.KindStorage, "firestore TouchSession", domain.ErrSessionNotFound)
		}
		return storageErr("firestore TouchSession", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, storageErr("firestore ListSessions", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, domain.NewAdapterError(domain.KindDecode, "decode sessionDoc", err)
		}

		out = append(out, &domain.Session{
			ID:         domain.SessionID(snap.Ref.ID),
			CreatedAt:  doc.CreatedAt,
			LastSeenAt: doc.LastSeenAt,
			IPInfo:     fromIPInfoDoc(doc.IPInfo),
			DeviceInfo: domain.DeviceInfo(doc.DeviceInfo),
			Referrer:   deref(doc.Referrer),
			LandingURL: doc.LandingURL,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// EventStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendEvent(ctx context.Context, event *domain.Event) error {
	doc := eventDoc{
		SessionID: string(event.SessionID),
		Name:      event.Name,
		Payload:   event.Payload,
		IP:        nullable(event.IP),
		URL:       event.URL,
		Path:      event.Path,
	}

	if _, _, err := s.client.Collection(eventsCollection).Add(ctx, doc); err != nil {
		return storageErr("firestore AppendEvent", err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	q := s.client.Collection(eventsCollection).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Event
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, storageErr("firestore ListEvents", err)
		}

		var doc eventDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, domain.NewAdapterError(domain.KindDecode, "decode eventDoc", err)
		}

		out = append(out, &domain.Event{
			ID:        domain.EventID(snap.Ref.ID),
			SessionID: domain.SessionID(doc.SessionID),
			Name:      doc.Name,
			Payload:   doc.Payload,
			IP:        deref(doc.IP),
			URL:       doc.URL,
			Path:      doc.Path,
			Timestamp: doc.Timestamp,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// QuizResponseStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendQuizResponse(ctx context.Context, resp *domain.QuizResponse) error {
	doc := faqResponseDoc{
		SessionID: string(resp.SessionID),
		Answers:   resp.Answers,
		IP:        nullable(resp.IP),
		URL:       resp.URL,
		Path:      resp.Path,
	}

	if _, _, err := s.client.Collection(faqCollection).Add(ctx, doc); err != nil {
		return storageErr("firestore AppendQuizResponse", err)
	}
	return nil
}

func (s *Store) ListQuizResponses(ctx context.Context, limit int) ([]*domain.QuizResponse, error) {
	q := s.client.Collection(faqCollection).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.QuizResponse
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, storageErr("firestore ListQuizResponses", err)
		}

		var doc faqResponseDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, domain.NewAdapterError(domain.KindDecode, "decode faqResponseDoc", err)
		}

		out = append(out, &domain.QuizResponse{
			ID:        domain.ResponseID(snap.Ref.ID),
			SessionID: domain.SessionID(doc.SessionID),
			Answers:   doc.Answers,
			IP:        deref(doc.IP),
			URL:       doc.URL,
			Path:      doc.Path,
			Timestamp: doc.Timestamp,
		})
	}
	return out, nil
}
