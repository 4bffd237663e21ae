package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stavrogyn/illumate-api/internal/api/handler"
	mw "github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	AuthHandlers *handler.Auth
	Tenants      *handler.Tenants
	Users        *handler.Users
	Clients      *handler.Clients
	Sessions     *handler.Sessions
	Notes        *handler.Notes
	Media        *handler.Media
	Insights     *handler.Insights
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/health", deps.HealthHandler)
	r.Post("/auth/register", deps.AuthHandlers.Register)
	r.Post("/auth/login", deps.AuthHandlers.Login)
	r.Get("/auth/verify", deps.AuthHandlers.Verify)
	r.Post("/auth/resend-verification", deps.AuthHandlers.ResendVerification)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/auth/logout", deps.AuthHandlers.Logout)
		r.Get("/auth/me", deps.AuthHandlers.Me)

		r.Get("/tenants/{tenantID}", deps.Tenants.Get)
		r.With(deps.Auth.RequireRole(models.RoleOwner)).
			Patch("/tenants/{tenantID}", deps.Tenants.Update)

		r.Get("/users/", deps.Users.List)
		r.Get("/users/{userID}", deps.Users.Get)
		r.With(deps.Auth.RequireRole(models.RoleOwner)).
			Patch("/users/{userID}", deps.Users.Update)
		r.With(deps.Auth.RequireRole(models.RoleOwner)).
			Delete("/users/{userID}", deps.Users.Delete)

		r.Post("/clients/", deps.Clients.Create)
		r.Get("/clients/", deps.Clients.List)
		r.Get("/clients/{clientID}", deps.Clients.Get)
		r.Patch("/clients/{clientID}", deps.Clients.Update)
		r.Delete("/clients/{clientID}", deps.Clients.Delete)

		r.Post("/sessions/", deps.Sessions.Create)
		r.Get("/sessions/", deps.Sessions.List)
		r.Get("/sessions/{sessionID}", deps.Sessions.Get)
		r.Patch("/sessions/{sessionID}", deps.Sessions.Update)
		r.Delete("/sessions/{sessionID}", deps.Sessions.Delete)

		r.Post("/notes/", deps.Notes.Create)
		r.Get("/notes/", deps.Notes.List)
		r.Get("/notes/{noteID}", deps.Notes.Get)
		r.Patch("/notes/{noteID}", deps.Notes.Update)
		r.Delete("/notes/{noteID}", deps.Notes.Delete)

		r.Post("/media/", deps.Media.Create)
		r.Get("/media/", deps.Media.List)
		r.Get("/media/{mediaID}", deps.Media.Get)
		r.Patch("/media/{mediaID}", deps.Media.Update)
		r.Delete("/media/{mediaID}", deps.Media.Delete)

		r.Post("/ai-insights/", deps.Insights.Create)
		r.Get("/ai-insights/", deps.Insights.List)
		r.Get("/ai-insights/{insightID}", deps.Insights.Get)
		r.Patch("/ai-insights/{insightID}", deps.Insights.Update)
		r.Delete("/ai-insights/{insightID}", deps.Insights.Delete)
	})

	return r
}
