package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var guardDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dashboard_guard_decisions_total",
		Help: "Route guard outcomes by guard and session state",
	},
	[]string{"guard", "state"},
)

// Decide computes the guard state for a session. With admin set, an
// authenticated user without the admin role is unauthenticated.
func Decide(m *session.Manager, admin bool) session.Status {
	if m == nil {
		return session.StatusUnauthenticated
	}
	snap := m.Snapshot()
	if admin && snap.Status == session.StatusAuthenticated && !snap.User.IsAdmin() {
		return session.StatusUnauthenticated
	}
	return snap.Status
}

// RequireAuth gates a subtree on an authenticated session.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return guard("auth", loginPath, false)
}

// RequireAdmin gates a subtree on an authenticated admin.
func RequireAdmin(loginPath string) func(http.Handler) http.Handler {
	return guard("admin", loginPath, true)
}

func guard(name, loginPath string, admin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := Decide(SessionFrom(r), admin)
			guardDecisions.WithLabelValues(name, state.String()).Inc()

			switch state {
			case session.StatusAuthenticated:
				next.ServeHTTP(w, r)
			case session.StatusLoading:
				w.Header().Set("Retry-After", "1")
				writeGuardJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			default:
				// the attempted destination is not remembered
				if wantsHTML(r) {
					http.Redirect(w, r, loginPath, http.StatusSeeOther)
					return
				}
				var body struct {
					domain.APIError
					Redirect string `json:"redirect"`
				}
				body.Error.Code = "unauthenticated"
				body.Error.Message = "Sign in to continue"
				body.Error.RequestID = GetRequestID(r.Context())
				body.Redirect = loginPath
				writeGuardJSON(w, http.StatusUnauthorized, body)
			}
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeGuardJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
