package domain

// IPInfo is the coarse geolocation of a client, as returned by the lookup service.
// Only IP is set when the fallback service answered.
type IPInfo struct {
	IP        string  `json:"ip,omitempty"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country_name,omitempty"`
	Postal    string  `json:"postal,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	Org       string  `json:"org,omitempty"`
}

// Session is one continuous browser visit.
// Immutable after creation except LastSeenAt.
type Session struct {
	ID         SessionID
	CreatedAt  Timestamp
	LastSeenAt Timestamp

	IPInfo     *IPInfo
	DeviceInfo DeviceInfo
	Referrer   string
	LandingURL string
}

// IP returns the session's client IP, or "" when geolocation failed.
func (s *Session) IP() string {
	if s == nil || s.IPInfo == nil {
		return ""
	}
	return s.IPInfo.IP
}

// Event is a single tracked user or system action. Append-only.
type Event struct {
	ID        EventID
	SessionID SessionID
	Name      string
	Payload   map[string]any
	IP        string
	URL       string
	Path      string
	Timestamp Timestamp
}

// QuizResponse is a submitted answer set in the quiz response log.
type QuizResponse struct {
	ID        ResponseID
	SessionID SessionID
	Answers   map[string]string
	IP        string
	URL       string
	Path      string
	Timestamp Timestamp
}
