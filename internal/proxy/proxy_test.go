package proxy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/proxy"
	appCtx "github.com/baechuer/otp-dashboard/internal/pkg/context"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxy_PathRewrite(t *testing.T) {
	type seen struct{ path, host string }
	ch := make(chan seen, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch <- seen{r.URL.Path, r.Host}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p, err := proxy.New(upstream.URL+"/api", "/api/backend", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://bff/api/backend/logs/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case got := <-ch:
		u, _ := url.Parse(upstream.URL)
		assert.Equal(t, "/api/logs/stats", got.path)
		assert.Equal(t, u.Host, got.host)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for upstream request")
	}
}

func TestProxy_PathRewritingUnderChi(t *testing.T) {
	var receivedPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p, err := proxy.New(upstream.URL+"/api", "/api/backend", nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Mount("/backend", p)
	})

	tests := []struct {
		name, in, want string
	}{
		{"templates", "/api/backend/templates", "/api/templates"},
		{"nested", "/api/backend/otp/verify", "/api/otp/verify"},
		{"usage", "/api/backend/usage/current", "/api/usage/current"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receivedPath = ""
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, tt.in, nil))
			assert.Equal(t, tt.want, receivedPath)
		})
	}
}

func TestProxy_SwapsCookieForBearer(t *testing.T) {
	got := make(chan http.Header, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		http.SetCookie(w, &http.Cookie{Name: "backend", Value: "x"})
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p, err := proxy.New(upstream.URL, "/api/backend", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://bff/api/backend/templates", nil)
	req.Header.Set("Cookie", "otpdash_sid=abc")
	req.Header.Set("Authorization", "Bearer forged")
	ctx := appCtx.WithRequestID(req.Context(), "test-req-id")
	ctx = apiclient.WithTokenSource(ctx, apiclient.StaticToken("tok-session"))

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req.WithContext(ctx))

	h := <-got
	assert.Equal(t, "Bearer tok-session", h.Get("Authorization"))
	assert.Empty(t, h.Get("Cookie"))
	assert.Equal(t, "test-req-id", h.Get("X-Request-Id"))
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestProxy_NoSessionNoBearer(t *testing.T) {
	got := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("Authorization")
	}))
	defer upstream.Close()

	p, err := proxy.New(upstream.URL, "/api/backend", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://bff/api/backend/plans", nil)
	req.Header.Set("Authorization", "Bearer forged")
	p.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, <-got)
}

func TestProxy_UpstreamDown(t *testing.T) {
	p, err := proxy.New("http://localhost:54321", "/api/backend", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://bff/api/backend/logs", nil)
	ctx := appCtx.WithRequestID(req.Context(), "req-123")
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend_unavailable")
	assert.Contains(t, rec.Body.String(), "req-123")
}

func TestRestrict_GuardsSubtree(t *testing.T) {
	var paths []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	h := proxy.Restrict("/api/backend", deny, next, "/admin")

	tests := []struct {
		target string
		status int
	}{
		{"/api/backend/admin/stats", http.StatusForbidden},
		{"/api/backend/admin", http.StatusForbidden},
		{"/api/backend/Admin/stats", http.StatusForbidden},
		{"/api/backend//admin/stats", http.StatusForbidden},
		{"/api/backend/%2Fadmin/stats", http.StatusForbidden},
		{"/api/backend/logs/../admin/stats", http.StatusForbidden},
		{"/api/backend/administrators", http.StatusOK},
		{"/api/backend/usage/current", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, []string{"/api/backend/administrators", "/api/backend/usage/current"}, paths)
}
