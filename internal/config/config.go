package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	// OTP backend, e.g. https://otp.example.com/api
	BackendURL string

	// Where the guard sends unauthenticated browsers
	LoginPath string

	// Session
	SessionCookie    string
	CookieSecure     bool
	SessionStore     string // "redis" or "memory"
	SessionTTL       time.Duration
	SessionIdleEvict time.Duration

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Rate limit
	RLEnabled   bool
	RLAuthLimit int
	RLWindow    time.Duration

	// Backend client
	ClientReadTimeout  time.Duration
	ClientWriteTimeout time.Duration

	AllowedOrigins []string

	// Peers allowed to set the client address via forwarding headers
	TrustedProxies []netip.Prefix

	// RabbitMQ (optional audit stream)
	RabbitURL      string
	RabbitExchange string

	// Tracing
	OTELEndpoint    string
	OTELSampleRatio float64

	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Port = getEnv("HTTP_PORT", "8080")

	cfg.BackendURL = strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:3000/api"), "/")
	cfg.LoginPath = getEnv("LOGIN_PATH", "/login")

	cfg.SessionCookie = getEnv("SESSION_COOKIE", "otpdash_sid")
	cfg.CookieSecure = getBool("COOKIE_SECURE", cfg.AppEnv != "dev")
	cfg.SessionStore = strings.ToLower(getEnv("SESSION_STORE", "redis"))
	cfg.SessionTTL = getDuration("SESSION_TTL", 7*24*time.Hour)
	cfg.SessionIdleEvict = getDuration("SESSION_IDLE_EVICT", 30*time.Minute)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPass = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLAuthLimit = getInt("RL_AUTH_LIMIT", 10)
	cfg.RLWindow = getDuration("RL_WINDOW", time.Minute)

	cfg.ClientReadTimeout = getDuration("CLIENT_READ_TIMEOUT", 5*time.Second)
	cfg.ClientWriteTimeout = getDuration("CLIENT_WRITE_TIMEOUT", 10*time.Second)

	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"))

	proxies, err := parsePrefixes(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}
	cfg.TrustedProxies = proxies

	cfg.RabbitURL = strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	cfg.RabbitExchange = getEnv("RABBITMQ_EXCHANGE", "dashboard.audit")

	cfg.OTELEndpoint = strings.TrimSpace(os.Getenv("OTEL_ENDPOINT"))
	cfg.OTELSampleRatio = getFloat("OTEL_SAMPLE_RATIO", 1)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	if cfg.SessionStore != "redis" && cfg.SessionStore != "memory" {
		return nil, fmt.Errorf("invalid SESSION_STORE %q (want redis or memory)", cfg.SessionStore)
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return nil, fmt.Errorf("LOGIN_PATH must be an absolute path, got %q", cfg.LoginPath)
	}
	if cfg.AppEnv != "dev" && !strings.HasPrefix(cfg.BackendURL, "https://") {
		return nil, fmt.Errorf("BACKEND_URL must use https when APP_ENV != dev")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getFloat(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePrefixes reads a comma-separated list of CIDRs or bare addresses.
func parsePrefixes(v string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(v) {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", item, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", item, err)
		}
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}
