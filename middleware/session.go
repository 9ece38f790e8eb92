package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/session"
	"github.com/google/uuid"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Session resolves the browser's session cookie to its Manager. A missing,
// malformed or unknown cookie starts a new, empty session; ids are only
// ever chosen by the server.
func Session(reg *session.Registry, cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil && reg.Known(r.Context(), id.String()) {
					sid = id.String()
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				setSessionCookie(w, cfg, sid)
			}

			m := reg.Get(r.Context(), sid)
			reportSession(r, m)

			renew := func(ctx context.Context) (*session.Manager, error) {
				cur := session.FromContext(ctx)
				if cur == nil {
					cur = m
				}
				nm, err := reg.Renew(ctx, cur)
				if err != nil {
					return nil, err
				}
				setSessionCookie(w, cfg, nm.ID())
				reportSession(r, nm)
				return nm, nil
			}

			ctx := session.WithManager(r.Context(), m)
			ctx = session.WithRenewer(ctx, renew)
			ctx = apiclient.WithTokenSource(ctx, m)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setSessionCookie(w http.ResponseWriter, cfg SessionConfig, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFrom returns the request's session manager, or nil outside Session.
func SessionFrom(r *http.Request) *session.Manager {
	return session.FromContext(r.Context())
}
