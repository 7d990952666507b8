package domain

import "context"

// LLMClient defines how the application talks to a text generation service.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeoLocator resolves coarse geolocation for a client address.
// ip may be empty when the client address is unknown.
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) (*IPInfo, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	// UpsertSession writes the session record, merging into an existing one.
	UpsertSession(ctx context.Context, session *Session) error
	// TouchSession refreshes the last seen timestamp.
	TouchSession(ctx context.Context, id SessionID) error
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
}

// EventStore is the append-only event log.
type EventStore interface {
	AppendEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, limit int) ([]*Event, error)
}

// QuizResponseStore is the append-only quiz response log.
type QuizResponseStore interface {
	AppendQuizResponse(ctx context.Context, resp *QuizResponse) error
	ListQuizResponses(ctx context.Context, limit int) ([]*QuizResponse, error)
}
