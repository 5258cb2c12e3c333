package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aujren/auth-service/internal/auth"
	"github.com/aujren/auth-service/internal/service"
	"github.com/aujren/auth-service/pkg/health"
	"github.com/aujren/auth-service/pkg/middleware"
)

// RouterConfig bundles the cross-cutting settings the router needs.
type RouterConfig struct {
	CORS             CORSConfig
	Cookies          CookieConfig
	ExposeErrorCause bool

	// PprofAllowedCIDRs gates the pprof endpoints. Empty leaves them off.
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all auth service routes registered.
func NewRouter(
	accountService *service.AccountService,
	signer *auth.Signer,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	ExposeErrorCause(cfg.ExposeErrorCause)

	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("auth"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if len(cfg.PprofAllowedCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	// Auth endpoints. Refresh authenticates through the refresh token cookie
	// alone; logout needs a valid access token on top of the cookie.
	authHandler := NewAuthHandler(accountService, cfg.Cookies, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(signer, accountService))
			r.Get("/logout", authHandler.Logout)
		})
	})

	// User endpoints. Profiles are readable by any authenticated user;
	// mutations are owner only.
	userHandler := NewUserHandler(accountService, logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Authenticate(signer, accountService))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(RequireOwner)

				r.Patch("/", userHandler.Patch)
				r.Put("/", userHandler.Put)
				r.Delete("/", userHandler.Delete)
			})
		})
	})

	return r
}
