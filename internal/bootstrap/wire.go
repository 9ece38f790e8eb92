package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/otp-dashboard/internal/api"
	"github.com/baechuer/otp-dashboard/internal/api/handlers"
	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/config"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/services"
	"github.com/baechuer/otp-dashboard/internal/session"
	"github.com/baechuer/otp-dashboard/internal/tracing"
	"github.com/baechuer/otp-dashboard/middleware"
)

var ErrNoConfig = errors.New("bootstrap: nil config")

// SweepInterval is how often idle sessions are evicted from memory.
const SweepInterval = time.Minute

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	NewRedis     func(addr, password string, db int) *goredis.Client
	NewPublisher func(url, exchange string) (audit.Publisher, error)
}

func defaultDeps() Deps {
	return Deps{
		NewRedis: func(addr, password string, db int) *goredis.Client {
			return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
		},
		NewPublisher: func(url, exchange string) (audit.Publisher, error) {
			return audit.NewRabbitPublisher(url, exchange)
		},
	}
}

func NewServer(cfg *config.Config) (*http.Server, func(), error) {
	return newServer(cfg, defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(cfg *config.Config, deps Deps) (*http.Server, func(), error) {
	return newServer(cfg, deps)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(cfg *config.Config, deps Deps) (*http.Server, func(), error) {
	if cfg == nil {
		return nil, nil, ErrNoConfig
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) tracing
	tp, err := tracing.Setup(context.Background(), tracing.Config{
		ServiceName:    tracing.ServiceName,
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRatio:    cfg.OTELSampleRatio,
	})
	if err != nil {
		return fail(err)
	}
	cleanupFns = append(cleanupFns, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	})

	// 2) redis + session store
	var (
		rdb      *goredis.Client
		store    session.Store
		checkers []handlers.ReadinessChecker
	)
	if cfg.SessionStore == "redis" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx).Err()
		cancel()

		switch {
		case err == nil:
			logger.Log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
			rdb = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		case cfg.AppEnv == "dev":
			logger.Log.Warn().Err(err).Msg("redis unavailable; sessions kept in memory")
			_ = c.Close()
		default:
			_ = c.Close()
			return fail(err)
		}
	}
	if rdb != nil {
		rs := session.NewRedisStore(rdb, cfg.SessionTTL)
		store = rs
		checkers = append(checkers, handlers.NewStoreChecker(rs))
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	// 3) backend client
	client := apiclient.NewClient(apiclient.ClientConfig{
		BaseURL:      cfg.BackendURL,
		ReadTimeout:  cfg.ClientReadTimeout,
		WriteTimeout: cfg.ClientWriteTimeout,
		Transport:    &middleware.TracingTransport{},
	})
	checkers = append(checkers, handlers.NewBackendChecker(cfg.BackendURL+"/plans"))

	// 4) sessions
	registry := session.NewRegistry(store, services.NewAuthService(client), cfg.SessionIdleEvict)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go registry.Run(sweepCtx, SweepInterval)
	cleanupFns = append(cleanupFns, stopSweep)

	// 5) audit publisher
	var pub audit.Publisher = audit.NopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case err == nil:
			pub = p
			cleanupFns = append(cleanupFns, func() { _ = p.Close() })
		case cfg.AppEnv == "dev":
			logger.Log.Warn().Err(err).Msg("rabbitmq unavailable; audit events are logged only")
		default:
			return fail(err)
		}
	}

	// 6) router
	router, err := api.NewRouter(api.Deps{
		Config:         cfg,
		Client:         client,
		Registry:       registry,
		Audit:          audit.New(logger.Log, pub),
		Redis:          rdb,
		Checkers:       checkers,
		ProxyTransport: &middleware.TracingTransport{},
	})
	if err != nil {
		return fail(err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, func() { runCleanup(cleanupFns) }, nil
}

// runCleanup runs in reverse order of acquisition.
func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
