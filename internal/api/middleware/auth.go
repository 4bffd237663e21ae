package middleware

import (
	"net/http"
	"strings"

	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/auth"
	"github.com/stavrogyn/illumate-api/internal/cache"
)

// AccessTokenCookie is the cookie carrying the JWT for browser clients.
const AccessTokenCookie = "access_token"

// TokenValidator validates an access token and returns its claims.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Auth provides JWT authentication and role-checking middleware.
type Auth struct {
	validator TokenValidator
	cache     cache.Cache
}

// NewAuth creates a new Auth middleware.
func NewAuth(v TokenValidator, c cache.Cache) *Auth {
	return &Auth{validator: v, cache: c}
}

// Authenticate validates the JWT from the Authorization header or the
// access_token cookie, rejects denylisted tokens, and sets user_id,
// tenant_id, and role in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing access token", nil)
			return
		}

		claims, err := a.validator.ValidateAccessToken(raw)
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired access token", nil)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid or expired access token", nil)
			return
		}

		if claims.ID != "" {
			denied, err := a.cache.IsTokenDenied(r.Context(), claims.ID)
			// Redis failure falls through: an expired denylist entry only
			// shortens the window a logged-out token stays usable.
			if err == nil && denied {
				response.Error(w, http.StatusUnauthorized,
					"INVALID_TOKEN", "Token has been revoked", nil)
				return
			}
		}

		ctx := r.Context()
		ctx = SetUserID(ctx, userID)
		ctx = SetTenantID(ctx, claims.TenantID)
		ctx = SetRole(ctx, claims.Role)
		ctx = SetTokenJTI(ctx, claims.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns middleware that rejects callers without one of the
// given roles.
func (a *Auth) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r)
			if ok {
				for _, allowed := range roles {
					if role == allowed {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Insufficient permissions", nil)
		})
	}
}

// extractToken prefers the Authorization header, falling back to the cookie.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
