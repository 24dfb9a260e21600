package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"go-character-api/internal/config"
	"go-character-api/internal/handler"
	"go-character-api/internal/metrics"
	"go-character-api/internal/middleware"
	"go-character-api/internal/model"
	"go-character-api/internal/websocket"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Character *handler.CharacterHandler
	Audit     *handler.AuditHandler
	Health    *handler.HealthHandler
	Events    *websocket.Hub
	Metrics   *metrics.Metrics
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSONError(w, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	// Long-lived stream; http.TimeoutHandler cannot hijack.
	if h.Events != nil {
		r.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).Get("/events", h.Events.ServeWS)
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/health", h.Health.Check)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Post("/logout", h.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/characters", func(characters chi.Router) {
			characters.Use(authMiddleware.RequireAuth)

			characters.Get("/", h.Character.List)
			characters.Get("/{id}", h.Character.Get)
			characters.With(authMiddleware.RequireRoles(model.RoleAdmin, model.RoleUser)).Post("/", h.Character.Create)
			characters.With(authMiddleware.RequireRoles(model.RoleAdmin, model.RoleUser)).Patch("/{id}", h.Character.Update)
			characters.With(authMiddleware.RequireRoles(model.RoleAdmin)).Delete("/{id}", h.Character.Delete)
		})

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin)).Get("/audit", h.Audit.List)
	})

	return r
}
