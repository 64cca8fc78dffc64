package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"forecast-vintage-api/internal/config"
	"forecast-vintage-api/internal/handler"
	"forecast-vintage-api/internal/middleware"
	"forecast-vintage-api/internal/model"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Observation *handler.ObservationHandler
	Diagnostic  *handler.DiagnosticHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	authThrottle := middleware.NewAuthThrottle(cfg.AuthRateLimitRPM)

	if cfg.TrustForwardedFor {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", h.Diagnostic.Health)

	r.Route("/api", func(api chi.Router) {
		api.Use(rateLimiter.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/", handler.WrongRequestType)
		api.Post("/", handler.EmptyRequest)

		api.With(authThrottle.Handler).Post("/get_hash", h.Auth.GetHash)
		api.Get("/get_token", handler.WrongTokenRequestType)
		api.With(authThrottle.Handler).Post("/get_token", h.Auth.GetToken)

		api.With(authMiddleware.Authenticate, authMiddleware.Authorize(model.RoleAdmin)).
			Get("/get_test", h.Diagnostic.Test)
		api.With(authMiddleware.Authenticate, authMiddleware.Authorize(model.RoleAdmin)).
			Post("/add_user", middleware.WithIdentity(h.User.AddUser))

		api.With(authMiddleware.Authenticate).
			Post("/get_obs_all_vintages", middleware.WithIdentity(h.Observation.AllVintages))
		api.With(authMiddleware.Authenticate).
			Post("/get_obs_last_vintage", middleware.WithIdentity(h.Observation.LastVintage))
	})

	return r
}
