package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements a sliding window rate limiter backed by Redis.
// Without Redis it falls back to an in-process httprate limiter.
type RedisRateLimiter struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisRateLimiter creates a new Redis-backed rate limiter. rdb may be nil.
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		prefix: "rl:dash:",
	}
}

// RateLimitConfig configures the rate limit for a specific scope.
type RateLimitConfig struct {
	Scope  string
	Limit  int           // Max requests allowed
	Window time.Duration // Time window
	KeyFn  func(r *http.Request) string
}

// Middleware returns an HTTP middleware that enforces the rate limit.
func (l *RedisRateLimiter) Middleware(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if l.rdb == nil {
		return httprate.Limit(cfg.Limit, cfg.Window,
			httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
				return cfg.Scope + ":" + cfg.KeyFn(r), nil
			}),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				tooManyRequests(w, r, cfg.Window)
			}),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.prefix + cfg.Scope + ":" + cfg.KeyFn(r)

			allowed, err := l.isAllowed(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				// Fail open on Redis errors
				logger.Ctx(r.Context()).Warn().Err(err).Str("scope", cfg.Scope).Msg("rate_limit_check_failed")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				tooManyRequests(w, r, cfg.Window)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, r *http.Request, window time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
	var body struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id,omitempty"`
		} `json:"error"`
	}
	body.Error.Code = "rate_limited"
	body.Error.Message = "Too many attempts. Try again shortly."
	body.Error.RequestID = GetRequestID(r.Context())
	writeGuardJSON(w, http.StatusTooManyRequests, body)
}

var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)

	if count < limit then
		redis.call('ZADD', key, now, now .. '-' .. math.random())
		redis.call('PEXPIRE', key, ttl)
		return 1
	end

	return 0
`)

// isAllowed checks if the request is within the rate limit using sliding window.
func (l *RedisRateLimiter) isAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	result, err := slidingWindow.Run(ctx, l.rdb, []string{key}, now, windowStart, limit, int(window.Milliseconds())).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

// KeyByIP keys on the connection's address without its port. Forwarding
// headers are not read here; RealIP rewrites RemoteAddr for trusted
// proxies before this runs.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// KeyBySession keys on the session's user, then the session id, then IP.
func KeyBySession(r *http.Request) string {
	m := SessionFrom(r)
	if m == nil {
		return KeyByIP(r)
	}
	if u := m.User(); u != nil && u.ID != "" {
		return "user:" + u.ID
	}
	return "sid:" + m.ID()
}
