package domain

import "time"

type SessionID string
type EventID string
type ResponseID string

type Timestamp = time.Time

// DeviceInfo is a free-form snapshot of the client environment
// (user agent, language, screen, viewport, timezone...).
type DeviceInfo map[string]any

// RequestMeta carries where in the front-end an event happened.
type RequestMeta struct {
	URL  string
	Path string
}
