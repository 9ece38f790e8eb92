package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"strings"

	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/middleware"
)

// New creates a reverse proxy to the OTP backend for calls the BFF has no
// view for. stripPrefix is removed and the rest is joined to the backend
// base path, so "/api/backend/templates" goes to "<backend>/templates".
//
// The session cookie never leaves the BFF; the session's bearer is sent in
// its place.
func New(backendURL, stripPrefix string, transport http.RoundTripper) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	if transport != nil {
		proxy.Transport = transport
	}
	originalDirector := proxy.Director

	proxy.Director = func(req *http.Request) {
		if strings.HasPrefix(req.URL.Path, stripPrefix) {
			req.URL.Path = strings.TrimPrefix(req.URL.Path, stripPrefix)
			req.URL.RawPath = ""
		}
		originalDirector(req)

		req.Host = target.Host
		req.Header.Del("Cookie")

		if tok := apiclient.TokenFromContext(req.Context()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		} else {
			req.Header.Del("Authorization")
		}

		if reqID := middleware.GetRequestID(req.Context()); reqID != "" {
			req.Header.Set(middleware.HeaderXRequestID, reqID)
		}
	}

	proxy.ModifyResponse = func(resp *http.Response) error {
		// the backend must not set cookies on the dashboard's origin
		resp.Header.Del("Set-Cookie")
		return nil
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		reqID := middleware.GetRequestID(r.Context())

		logger.Ctx(r.Context()).Error().
			Err(err).
			Str("target", target.Host).
			Str("path", r.URL.Path).
			Msg("backend_proxy_error")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"code":"backend_unavailable","message":"The OTP service could not be reached","request_id":"` + reqID + `"}}`))
	}

	return proxy, nil
}

// Restrict routes requests for the given subtrees of prefix through guard
// and everything else straight to next. The path is cleaned before the
// check and forwarded cleaned, so dot segments, doubled or encoded slashes
// and letter case cannot step around it.
func Restrict(prefix string, guard func(http.Handler) http.Handler, next http.Handler, subtrees ...string) http.Handler {
	guarded := guard(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaned := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") && cleaned != "/" {
			cleaned += "/"
		}
		r.URL.Path = cleaned
		r.URL.RawPath = ""

		rest := strings.ToLower(strings.TrimPrefix(cleaned, prefix))
		for _, sub := range subtrees {
			sub = strings.ToLower(sub)
			if rest == sub || strings.HasPrefix(rest, sub+"/") {
				guarded.ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
