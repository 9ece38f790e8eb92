package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/baechuer/otp-dashboard/internal/api/handlers"
	"github.com/baechuer/otp-dashboard/internal/apiclient"
	"github.com/baechuer/otp-dashboard/internal/audit"
	"github.com/baechuer/otp-dashboard/internal/config"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/preview"
	"github.com/baechuer/otp-dashboard/internal/proxy"
	"github.com/baechuer/otp-dashboard/internal/services"
	"github.com/baechuer/otp-dashboard/internal/session"
	"github.com/baechuer/otp-dashboard/internal/tracing"
	"github.com/baechuer/otp-dashboard/middleware"
)

type Deps struct {
	Config   *config.Config
	Client   *apiclient.Client
	Registry *session.Registry
	Audit    *audit.Logger

	// Redis backs the rate limiter; nil limits in-process.
	Redis *redis.Client

	Checkers []handlers.ReadinessChecker

	// ProxyTransport is used for /api/backend; nil means the default.
	ProxyTransport http.RoundTripper
}

func NewRouter(deps Deps) (http.Handler, error) {
	cfg := deps.Config

	authSvc := services.NewAuthService(deps.Client)
	logSvc := services.NewLogService(deps.Client)
	planSvc := services.NewPlanService(deps.Client)
	smtpSvc := services.NewSMTPService(deps.Client)

	ready := handlers.NewReadinessHandler(deps.Checkers...)
	authH := handlers.NewAuthHandler(authSvc, deps.Audit)
	dashH := handlers.NewDashboardHandler(logSvc, planSvc)
	tplH := handlers.NewTemplateHandler(services.NewTemplateService(deps.Client), preview.NewRenderer())
	smtpH := handlers.NewSMTPHandler(smtpSvc)
	keyH := handlers.NewAPIKeyHandler(services.NewAPIKeyService(deps.Client), smtpSvc, deps.Audit)
	logH := handlers.NewLogHandler(logSvc)
	planH := handlers.NewPlanHandler(planSvc, deps.Audit)
	otpH := handlers.NewTestOTPHandler(services.NewOTPService(deps.Client))
	setH := handlers.NewSettingsHandler(services.NewSettingsService(deps.Client), deps.Audit)
	adminH := handlers.NewAdminHandler(services.NewAdminService(deps.Client), deps.Audit)

	backendProxy, err := proxy.New(cfg.BackendURL, "/api/backend", deps.ProxyTransport)
	if err != nil {
		return nil, fmt.Errorf("backend proxy: %w", err)
	}

	limiter := middleware.NewRedisRateLimiter(deps.Redis)
	limit := func(scope string, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
		if !cfg.RLEnabled {
			return func(next http.Handler) http.Handler { return next }
		}
		return limiter.Middleware(middleware.RateLimitConfig{
			Scope:  scope,
			Limit:  cfg.RLAuthLimit,
			Window: cfg.RLWindow,
			KeyFn:  keyFn,
		})
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Tracing(tracing.ServiceName))
	r.Use(middleware.SecurityHeaders(cfg.CookieSecure))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.HeaderXRequestID},
		ExposedHeaders:   []string{middleware.HeaderXRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", ready.Healthz)
		r.Get("/readyz", ready.Readyz)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(deps.Registry, middleware.SessionConfig{
				CookieName: cfg.SessionCookie,
				Secure:     cfg.CookieSecure,
				TTL:        cfg.SessionTTL,
			}))

			r.Get("/session", authH.Session)

			r.Route("/auth", func(r chi.Router) {
				r.Use(limit("auth", middleware.KeyByIP))
				r.Post("/login", authH.Login)
				r.Post("/register", authH.Register)
				r.Post("/forgot-password", authH.ForgotPassword)
				r.Post("/reset-password", authH.ResetPassword)
				r.Post("/logout", authH.Logout)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(middleware.RequireAuth(cfg.LoginPath))

				r.Get("/", dashH.Home)

				r.Route("/templates", func(r chi.Router) {
					r.Get("/", tplH.List)
					r.Post("/", tplH.Create)
					r.Get("/{id}", tplH.Get)
					r.Put("/{id}", tplH.Update)
					r.Delete("/{id}", tplH.Delete)
					r.Post("/{id}/preview", tplH.Preview)
				})

				r.Route("/smtp", func(r chi.Router) {
					r.Get("/", smtpH.List)
					r.Post("/", smtpH.Create)
					r.Put("/{id}", smtpH.Update)
					r.Delete("/{id}", smtpH.Delete)
				})

				r.Route("/apikeys", func(r chi.Router) {
					r.Get("/", keyH.List)
					r.Post("/", keyH.Create)
					r.Delete("/{id}", keyH.Delete)
				})

				r.Get("/logs", logH.List)
				r.Get("/logs/{id}", logH.Get)

				r.Get("/plans", planH.List)
				r.Post("/plans/upgrade", planH.Upgrade)

				r.Route("/test-otp", func(r chi.Router) {
					r.Use(limit("test_otp", middleware.KeyBySession))
					r.Post("/send", otpH.Send)
					r.Post("/verify", otpH.Verify)
				})

				r.Route("/settings", func(r chi.Router) {
					r.Get("/", setH.Get)
					r.Put("/profile", setH.UpdateProfile)
					r.Put("/security", setH.UpdateSecurity)
					r.Post("/password", setH.ChangePassword)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(cfg.LoginPath))

				r.Get("/stats", adminH.Stats)
				r.Get("/plans", adminH.ListPlans)
				r.Post("/plans", adminH.CreatePlan)
				r.Patch("/plans/{id}", adminH.UpdatePlan)
				r.Delete("/plans/{id}", adminH.DeletePlan)
				r.Post("/assign-default-plans", adminH.AssignDefaultPlans)
			})

			r.With(middleware.RequireAuth(cfg.LoginPath)).Mount("/backend",
				proxy.Restrict("/api/backend", middleware.RequireAdmin(cfg.LoginPath), backendProxy, "/admin"))
		})
	})

	logger.Log.Info().Str("backend", cfg.BackendURL).Msg("routes mounted")

	return r, nil
}
