package httpadapter

import (
	"context"
	"net/http"
	"net/url"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/valentine-quest/internal/app/tracking"
	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

const (
	headerSessionID = "X-Session-ID"
	headerPageURL   = "X-Page-URL"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// withLogging logs every request with its request id, status and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := observability.WithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		observability.FromContext(ctx, s.log).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// withCORS adds basic CORS headers to allow calls from the web front-end.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+headerSessionID+", "+headerPageURL)
		w.Header().Set("Access-Control-Expose-Headers", headerSessionID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withSession requires X-Session-ID and ensures the session before the handler runs.
// An id outside the accepted charset or length is replaced; the id in use is echoed in the response header.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerSessionID)
		if id == "" {
			badRequest(w, headerSessionID+" header is required")
			return
		}

		sc, err := s.tracker.EnsureSession(r.Context(), tracking.SessionRequest{
			ID:       domain.SessionID(id),
			ClientIP: r.RemoteAddr,
		})
		if err != nil {
			// The session record is best effort; the experience goes on.
			observability.FromContext(r.Context(), s.log).Warn("ensure session failed", "error", err)
		}

		w.Header().Set(headerSessionID, string(sc.SessionID))
		ctx := observability.WithSessionID(r.Context(), string(sc.SessionID))
		ctx = context.WithValue(ctx, ctxKeySession, sc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) tracking.SessionContext {
	sc, _ := r.Context().Value(ctxKeySession).(tracking.SessionContext)
	return sc
}

// requestMeta tells where in the front-end the request came from:
// X-Page-URL when the client sends it, the Referer otherwise.
func requestMeta(r *http.Request) domain.RequestMeta {
	raw := r.Header.Get(headerPageURL)
	if raw == "" {
		raw = r.Referer()
	}
	meta := domain.RequestMeta{URL: raw}
	if u, err := url.Parse(raw); err == nil {
		meta.Path = u.Path
	}
	return meta
}
