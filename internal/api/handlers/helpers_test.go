package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockAuth is the session's view of the auth endpoints.
type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*domain.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*domain.RegisterResponse)
	return resp, args.Error(1)
}

func (m *mockAuth) CurrentPlan(ctx context.Context) (*domain.Plan, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*domain.Plan)
	return p, args.Error(1)
}

func alice() *domain.User {
	return &domain.User{
		ID:             "u1",
		Email:          "alice@example.com",
		FullName:       "Alice",
		Role:           domain.RoleUser,
		SessionTimeout: 30,
		Plan:           &domain.Plan{ID: "p-pro", Name: "Pro", TemplateLimit: 10, SMTPLimit: 5, APIKeyLimit: 4},
	}
}

// newSession returns an initialized session. A nil user gives an
// unauthenticated one.
func newSession(t *testing.T, backend session.Backend, user *domain.User) *session.Manager {
	t.Helper()
	if backend == nil {
		backend = &mockAuth{}
	}
	store := session.NewMemoryStore(time.Hour)
	if user != nil {
		raw, err := json.Marshal(user)
		require.NoError(t, err)
		require.NoError(t, store.Save(context.Background(), "sid-1", session.Record{Token: "tok-1", User: raw}))
	}
	m := session.NewManager("sid-1", store, backend)
	m.Initialize(context.Background())
	return m
}

func testAudit() *audit.Logger {
	return audit.New(zerolog.Nop(), nil)
}

// serve mounts h on pattern and sends one request to target. body may be
// a string (sent as is) or any value (JSON-encoded).
func serve(t *testing.T, m *session.Manager, method, pattern, target string, body any, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if m != nil {
				req = req.WithContext(session.WithManager(req.Context(), m))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.MethodFunc(method, pattern, h)

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Upgrade bool `json:"upgrade"`
}

func failure(kind domain.ErrorKind, status int, msg string) error {
	return &domain.Failure{Kind: kind, Status: status, Message: msg}
}
