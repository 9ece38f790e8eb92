package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/otp-dashboard/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request once it completes, including the
// session state the request ran under.
func RequestLogger(l zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			slot := &logSlot{}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), logSlotKey{}, slot)))

			event := l.Info()
			if ww.Status() >= 500 {
				event = l.Error()
			} else if ww.Status() >= 400 {
				event = l.Warn()
			}

			event = event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Str("request_id", GetRequestID(r.Context())).
				Str("ip", r.RemoteAddr)

			if m := slot.manager; m != nil {
				event = event.Str("session", m.Status().String())
				if u := m.User(); u != nil {
					event = event.Str("user_id", u.ID)
				}
			}

			event.Msg("http_request")
		})
	}
}

// logSlot lets Session, which runs further down the chain, report the
// manager back to the access log.
type logSlot struct {
	manager *session.Manager
}

type logSlotKey struct{}

func reportSession(r *http.Request, m *session.Manager) {
	if slot, ok := r.Context().Value(logSlotKey{}).(*logSlot); ok {
		slot.manager = m
	}
}
