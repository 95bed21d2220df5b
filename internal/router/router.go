package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ervipinsingh/spice-drama-admin/internal/api/account"
	"github.com/ervipinsingh/spice-drama-admin/internal/api/auth"
	"github.com/ervipinsingh/spice-drama-admin/internal/types"
)

// Config contains the dependencies needed for router setup.
type Config struct {
	AuthHandler    *auth.AuthHandler
	AccountHandler *account.AccountHandler

	// Gate builds the authorization middleware for a role set. Every
	// protected route goes through it; there is no authenticate-only
	// variant, so the active-account check cannot be skipped by
	// routing choice.
	Gate func(required types.RoleSet) func(next http.Handler) http.Handler

	AllowedOrigins []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request id, logger, recoverer) are applied
// before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		// Public: login only, throttled inside the handler.
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Authenticated (any role). Still the full gate: a banned
		// account cannot reach /auth/me or logout.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Gate(types.RoleSetAuthenticated))
			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/me", cfg.AuthHandler.Me)
		})

		// User administration: admin and super_admin.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Gate(types.RoleSetUserAdmin))
			r.Post("/auth/users", cfg.AccountHandler.CreateUser)
			r.Get("/auth/users", cfg.AccountHandler.ListUsers)
			r.Get("/auth/users/{id}", cfg.AccountHandler.GetUser)
			r.Patch("/auth/users/{id}/status", cfg.AccountHandler.UpdateStatus)
			r.Post("/users/ban/{id}", cfg.AccountHandler.Ban)
			r.Post("/users/unban/{id}", cfg.AccountHandler.Unban)
		})

		// Deletion: super_admin only.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Gate(types.RoleSetUserDelete))
			r.Delete("/auth/users/{id}", cfg.AccountHandler.DeleteUser)
		})
	})

	return r
}
