package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/otp-dashboard/internal/logger"
	appCtx "github.com/baechuer/otp-dashboard/internal/pkg/context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrTimeout     = errors.New("backend_timeout")
	ErrUnavailable = errors.New("backend_unavailable")
)

var backendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "dashboard_backend_request_duration_seconds",
		Help:    "Latency of calls from the dashboard to the OTP backend",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"method", "status"},
)

// ClientConfig holds configuration for the backend client
type ClientConfig struct {
	BaseURL string
	// ReadTimeout is used for GET requests
	ReadTimeout time.Duration
	// WriteTimeout is used for POST, PUT, PATCH, DELETE requests
	WriteTimeout time.Duration
	// Transport defaults to http.DefaultTransport
	Transport http.RoundTripper
}

// DefaultClientConfig returns sensible defaults
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:      baseURL,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Client is the single shared wrapper around the OTP backend. Every call:
//   - targets BaseURL with a JSON content type
//   - carries the session bearer when a TokenSource is in context
//   - forwards X-Request-ID
//   - runs once, bounded only by the per-method timeout
type Client struct {
	baseURL    string
	baseClient *http.Client
	config     ClientConfig
}

func NewClient(config ClientConfig) *Client {
	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		baseClient: &http.Client{
			// No global timeout - we set per-request timeouts
			Timeout:   0,
			Transport: transport,
		},
		config: config,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends body as JSON to path and decodes the response into out.
// body and out may be nil. Non-2xx responses come back as *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	// Once issued, a call is not abandoned when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	timeout := c.config.ReadTimeout
	if isWriteMethod(method) {
		timeout = c.config.WriteTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.Ctx(ctx).With().
		Str("method", method).
		Str("path", path).
		Logger()

	start := time.Now()
	resp, err := c.baseClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		backendRequestDuration.WithLabelValues(method, "error").Observe(duration.Seconds())
		log.Warn().Err(err).Dur("duration", duration).Msg("backend_request_failed")
		return mapError(err)
	}
	defer resp.Body.Close()

	backendRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(duration.Seconds())
	log.Debug().Int("status", resp.StatusCode).Dur("duration", duration).Msg("backend_request_completed")

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// mapError converts low-level errors to client errors
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	// Connection refused, DNS errors, etc.
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// isWriteMethod returns true for HTTP methods that modify state
func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
