package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/valentine-quest/internal/app/dashboard"
	"github.com/PabloGalante/valentine-quest/internal/app/evasion"
	"github.com/PabloGalante/valentine-quest/internal/app/experience"
	"github.com/PabloGalante/valentine-quest/internal/app/quiz"
	"github.com/PabloGalante/valentine-quest/internal/app/tracking"
	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

type Server struct {
	tracker    *tracking.Tracker
	sink       *tracking.Sink
	experience *experience.Service
	dashboard  *dashboard.Service
	log        *slog.Logger
}

// Deps are the services behind the HTTP API.
type Deps struct {
	Tracker    *tracking.Tracker
	Sink       *tracking.Sink
	Experience *experience.Service
	Dashboard  *dashboard.Service
	Logger     *slog.Logger
}

func NewServer(d Deps) http.Handler {
	s := &Server{
		tracker:    d.Tracker,
		sink:       d.Sink,
		experience: d.Experience,
		dashboard:  d.Dashboard,
		log:        d.Logger,
	}
	if s.log == nil {
		s.log = observability.Logger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(withCORS)
	r.Use(s.withLogging)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/experience/questions", s.handleQuestions)
	r.Get("/dashboard", s.handleDashboard)

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/experience", s.handleGetExperience)
		r.Post("/experience/actions", s.handleAction)
		r.Post("/experience/decline", s.handleDecline)
		r.Post("/events", s.handleEvent)
	})

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	SessionID  string            `json:"session_id,omitempty"`
	DeviceInfo domain.DeviceInfo `json:"device_info,omitempty"`
	Referrer   string            `json:"referrer,omitempty"`
	LandingURL string            `json:"landing_url,omitempty"`
}

type createSessionResponse struct {
	SessionID string         `json:"session_id"`
	IPInfo    *domain.IPInfo `json:"ip_info"`
}

type actionRequest struct {
	Action string `json:"action"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
}

type declineRequest struct {
	evasion.Viewport
	Scale float64 `json:"scale"`
}

type eventRequest struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
}

type questionsResponse struct {
	GirlfriendName string          `json:"girlfriend_name"`
	Questions      []quiz.Question `json:"questions"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(headerSessionID)
	}

	sc, err := s.tracker.EnsureSession(r.Context(), tracking.SessionRequest{
		ID:         domain.SessionID(req.SessionID),
		ClientIP:   r.RemoteAddr,
		DeviceInfo: req.DeviceInfo,
		Referrer:   req.Referrer,
		LandingURL: req.LandingURL,
	})
	if err != nil {
		observability.FromContext(r.Context(), s.log).Warn("ensure session failed", "error", err)
	}

	w.Header().Set(headerSessionID, string(sc.SessionID))
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: string(sc.SessionID),
		IPInfo:    sc.IPInfo,
	})
}

func (s *Server) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, questionsResponse{
		GirlfriendName: s.experience.GirlfriendName(),
		Questions:      quiz.Questions(),
	})
}

func (s *Server) handleGetExperience(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r)
	v, err := s.experience.View(r.Context(), sc.SessionID, requestMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	kind := experience.ActionKind(strings.ToLower(strings.TrimSpace(req.Action)))
	if kind == "" {
		badRequest(w, "action is required")
		return
	}

	sc := sessionFrom(r)
	v, err := s.experience.Dispatch(r.Context(), sc.SessionID, experience.Action{
		Kind:  kind,
		Field: req.Field,
		Value: req.Value,
	}, requestMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	var req declineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	sc := sessionFrom(r)
	m, err := s.experience.Decline(r.Context(), sc.SessionID, req.Viewport, req.Scale, requestMeta(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 64 {
		badRequest(w, "name is required (max 64 characters)")
		return
	}

	s.sink.Record(r.Context(), sessionFrom(r).SessionID, name, req.Payload, requestMeta(r))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Get(r.Context()))
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, experience.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, experience.ErrFlowClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
	default:
		internalError(w, r, s.log, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	observability.FromContext(r.Context(), log).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
