package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/handler"
	"github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/internal/auth"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifiedUser(tenantID uuid.UUID) *models.User {
	return &models.User{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Email:      "anna@example.com",
		Role:       models.RoleOwner,
		Locale:     "en",
		IsVerified: true,
	}
}

func TestRegisterHandler(t *testing.T) {
	var gotParams auth.RegisterParams
	svc := &mockAuthService{
		registerFn: func(_ context.Context, params auth.RegisterParams) (*models.User, error) {
			gotParams = params
			return verifiedUser(uuid.New()), nil
		},
	}
	h := handler.NewAuth(svc, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	req := jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":       "  Anna@Example.com ",
		"password":    "correct horse battery",
		"tenant_name": "Anna's Practice",
	})
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "anna@example.com", gotParams.Email)
	assert.Equal(t, models.RoleOwner, gotParams.Role)
	assert.Equal(t, "en", gotParams.Locale)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestRegisterHandler_Validation(t *testing.T) {
	h := handler.NewAuth(&mockAuthService{}, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{
			"email": "not-an-email", "password": "longenough1", "tenant_name": "P"}},
		{"short password", map[string]string{
			"email": "a@b.com", "password": "short", "tenant_name": "P"}},
		{"missing tenant name", map[string]string{
			"email": "a@b.com", "password": "longenough1"}},
		{"bad role", map[string]string{
			"email": "a@b.com", "password": "longenough1", "tenant_name": "P", "role": "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, jsonRequest(http.MethodPost, "/auth/register", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
		})
	}
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(context.Context, auth.RegisterParams) (*models.User, error) {
			return nil, store.ErrDuplicateKey
		},
	}
	h := handler.NewAuth(svc, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"email": "a@b.com", "password": "longenough1", "tenant_name": "P",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_EXISTS")
}

func TestLoginHandler(t *testing.T) {
	tenantID := uuid.New()
	expiresAt := time.Now().Add(30 * time.Minute)
	svc := &mockAuthService{
		loginFn: func(_ context.Context, email, password string) (*models.User, string, time.Time, error) {
			return verifiedUser(tenantID), "signed.jwt.token", expiresAt, nil
		},
	}
	h := handler.NewAuth(svc, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email": "anna@example.com", "password": "correct horse battery",
	}))

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec.Body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "signed.jwt.token", data["access_token"])
	assert.Equal(t, "bearer", data["token_type"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, "signed.jwt.token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(context.Context, string, string) (*models.User, string, time.Time, error) {
			return nil, "", time.Time{}, auth.ErrInvalidCredentials
		},
	}
	h := handler.NewAuth(svc, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"email": "anna@example.com", "password": "wrong",
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestVerifyHandler(t *testing.T) {
	svc := &mockAuthService{
		verifyFn: func(_ context.Context, token string) (*models.User, error) {
			if token != "good-token" {
				return nil, store.ErrNotFound
			}
			return verifiedUser(uuid.New()), nil
		},
	}
	h := handler.NewAuth(svc, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	rec := httptest.NewRecorder()
	h.Verify(rec, httptest.NewRequest(http.MethodGet, "/auth/verify?token=good-token", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Verify(rec, httptest.NewRequest(http.MethodGet, "/auth/verify?token=bad-token", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Verify(rec, httptest.NewRequest(http.MethodGet, "/auth/verify", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResendVerificationHandler_AlreadyVerified(t *testing.T) {
	svc := &mockAuthService{
		resendFn: func(context.Context, string) error { return auth.ErrAlreadyVerified },
	}
	h := handler.NewAuth(svc, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	rec := httptest.NewRecorder()
	h.ResendVerification(rec, jsonRequest(http.MethodPost, "/auth/resend-verification", map[string]string{
		"email": "anna@example.com",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoutHandler(t *testing.T) {
	cache := &mockCache{}
	h := handler.NewAuth(&mockAuthService{}, &mockStore{}, cache, 30*time.Minute, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = asCaller(req, uuid.New(), uuid.New(), models.RoleTherapist)
	req = req.WithContext(middleware.SetTokenJTI(req.Context(), "jti-123"))

	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30*time.Minute, cache.denied["jti-123"])
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AccessTokenCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestMeHandler(t *testing.T) {
	tenantID := uuid.New()
	user := verifiedUser(tenantID)
	ms := &mockStore{
		getUserFn: func(_ context.Context, id, tid uuid.UUID) (*models.User, error) {
			if id != user.ID || tid != tenantID {
				return nil, store.ErrNotFound
			}
			return user, nil
		},
	}
	h := handler.NewAuth(&mockAuthService{}, ms, &mockCache{}, 30*time.Minute, false)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = asCaller(req, user.ID, tenantID, user.Role)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec.Body)
	data := body["data"].(map[string]any)
	assert.Equal(t, user.Email, data["email"])
}

func TestMeHandler_MissingIdentity(t *testing.T) {
	h := handler.NewAuth(&mockAuthService{}, &mockStore{}, &mockCache{}, 30*time.Minute, false)

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
