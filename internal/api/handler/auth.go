package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/auth"
	"github.com/stavrogyn/illumate-api/internal/cache"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

const minPasswordLen = 8

// AuthService is the part of the auth service the handlers depend on.
type AuthService interface {
	Register(ctx context.Context, params auth.RegisterParams) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ResendVerification(ctx context.Context, email string) error
}

// Auth bundles the authentication endpoints.
type Auth struct {
	svc           AuthService
	store         store.Store
	cache         cache.Cache
	tokenTTL      time.Duration
	secureCookies bool
}

// NewAuth creates the auth endpoint handlers.
func NewAuth(svc AuthService, s store.Store, c cache.Cache, tokenTTL time.Duration, secureCookies bool) *Auth {
	return &Auth{svc: svc, store: s, cache: c, tokenTTL: tokenTTL, secureCookies: secureCookies}
}

// Register handles POST /auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		TenantName string `json:"tenant_name"`
		Role       string `json:"role"`
		Locale     string `json:"locale"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.TenantName = strings.TrimSpace(req.TenantName)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "email must be a valid address", nil)
		return
	}
	if len(req.Password) < minPasswordLen {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "password must be at least 8 characters", nil)
		return
	}
	if req.TenantName == "" || len(req.TenantName) > 120 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "tenant_name is required and must be at most 120 characters", nil)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleOwner
	}
	if !models.ValidRole(req.Role) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "role must be one of therapist, assistant, owner", nil)
		return
	}
	if req.Locale == "" {
		req.Locale = "en"
	}

	user, err := h.svc.Register(r.Context(), auth.RegisterParams{
		Email:      req.Email,
		Password:   req.Password,
		TenantName: req.TenantName,
		Role:       req.Role,
		Locale:     req.Locale,
	})
	if err != nil {
		storeError(w, err, "Account")
		return
	}

	response.Created(w, user)
}

// Login handles POST /auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "email and password are required", nil)
		return
	}

	user, token, expiresAt, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
			return
		}
		storeError(w, err, "User")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expiresAt.UTC().Format(time.RFC3339),
		"user":         user,
	})
}

// Verify handles GET /auth/verify?token=...
func (h *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "token is required", nil)
		return
	}

	user, err := h.svc.VerifyEmail(r.Context(), token)
	if err != nil {
		storeError(w, err, "Verification token")
		return
	}

	response.JSON(w, map[string]any{
		"message": "Email verified successfully",
		"user":    user,
	})
}

// ResendVerification handles POST /auth/resend-verification.
func (h *Auth) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "email is required", nil)
		return
	}

	err := h.svc.ResendVerification(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrAlreadyVerified) {
			response.Error(w, http.StatusConflict, "ALREADY_EXISTS", "Email is already verified", nil)
			return
		}
		storeError(w, err, "User")
		return
	}

	response.JSON(w, map[string]string{"message": "Verification email sent"})
}

// Logout handles POST /auth/logout. The token's jti is denylisted for the
// full token TTL, an upper bound on its remaining validity.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if jti, ok := middleware.GetTokenJTI(r); ok && jti != "" {
		if err := h.cache.DenyToken(r.Context(), jti, h.tokenTTL); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke token", nil)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, map[string]string{"message": "Logged out"})
}

// Me handles GET /auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), userID, tenantID)
	if err != nil {
		storeError(w, err, "User")
		return
	}
	response.JSON(w, user)
}
