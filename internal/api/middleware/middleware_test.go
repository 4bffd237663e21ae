package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	claims *auth.Claims
	err    error
}

func (f *fakeValidator) ValidateAccessToken(string) (*auth.Claims, error) {
	return f.claims, f.err
}

type fakeCache struct {
	count     int64
	incrErr   error
	denied    map[string]bool
	deniedErr error
}

func (f *fakeCache) Ping(context.Context) error { return nil }

func (f *fakeCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.count++
	return f.count, nil
}

func (f *fakeCache) DenyToken(_ context.Context, jti string, _ time.Duration) error {
	if f.denied == nil {
		f.denied = map[string]bool{}
	}
	f.denied[jti] = true
	return nil
}

func (f *fakeCache) IsTokenDenied(_ context.Context, jti string) (bool, error) {
	if f.deniedErr != nil {
		return false, f.deniedErr
	}
	return f.denied[jti], nil
}

func testClaims(userID uuid.UUID, role string) *auth.Claims {
	return &auth.Claims{
		TenantID: uuid.New(),
		Email:    "anna@example.com",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
			ID:      uuid.NewString(),
		},
	}
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	userID := uuid.New()
	claims := testClaims(userID, "therapist")
	a := middleware.NewAuth(&fakeValidator{claims: claims}, &fakeCache{})

	var gotUser uuid.UUID
	var gotTenant uuid.UUID
	var gotRole string
	handler := a.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = middleware.GetUserID(r)
		gotTenant, _ = middleware.GetTenantID(r)
		gotRole, _ = middleware.GetRole(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, claims.TenantID, gotTenant)
	assert.Equal(t, "therapist", gotRole)
}

func TestAuthenticate_Cookie(t *testing.T) {
	claims := testClaims(uuid.New(), "therapist")
	a := middleware.NewAuth(&fakeValidator{claims: claims}, &fakeCache{})

	var called bool
	handler := a.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "some.jwt.token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	a := middleware.NewAuth(&fakeValidator{}, &fakeCache{})

	var called bool
	handler := a.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	assert.False(t, called)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	a := middleware.NewAuth(&fakeValidator{err: auth.ErrInvalidToken}, &fakeCache{})

	var called bool
	handler := a.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req.Header.Set("Authorization", "Bearer bad.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthenticate_MalformedAuthorizationHeader(t *testing.T) {
	a := middleware.NewAuth(&fakeValidator{claims: testClaims(uuid.New(), "therapist")}, &fakeCache{})

	var called bool
	handler := a.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthenticate_DeniedToken(t *testing.T) {
	claims := testClaims(uuid.New(), "therapist")
	cache := &fakeCache{denied: map[string]bool{claims.ID: true}}
	a := middleware.NewAuth(&fakeValidator{claims: claims}, cache)

	var called bool
	handler := a.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req.Header.Set("Authorization", "Bearer revoked.jwt.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
	assert.False(t, called)
}

func TestAuthenticate_DenylistFailureAllowsRequest(t *testing.T) {
	claims := testClaims(uuid.New(), "therapist")
	cache := &fakeCache{deniedErr: assert.AnError}
	a := middleware.NewAuth(&fakeValidator{claims: claims}, cache)

	var called bool
	handler := a.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireRole(t *testing.T) {
	a := middleware.NewAuth(&fakeValidator{}, &fakeCache{})

	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"owner allowed", "owner", []string{"owner"}, http.StatusOK},
		{"one of several", "assistant", []string{"owner", "assistant"}, http.StatusOK},
		{"therapist rejected", "therapist", []string{"owner"}, http.StatusForbidden},
		{"no role in context", "", []string{"owner"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := a.RequireRole(tt.allowed...)(okHandler(&called))

			req := httptest.NewRequest(http.MethodPatch, "/tenants/x", nil)
			if tt.role != "" {
				req = req.WithContext(middleware.SetRole(req.Context(), tt.role))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCode == http.StatusOK, called)
		})
	}
}

func TestRateLimit_UnderLimit(t *testing.T) {
	rl := middleware.NewRateLimit(&fakeCache{}, 5)

	var called bool
	handler := rl.Limit(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_OverLimit(t *testing.T) {
	cache := &fakeCache{}
	rl := middleware.NewRateLimit(cache, 2)

	userID := uuid.New()
	var lastCode int
	for i := 0; i < 3; i++ {
		var called bool
		handler := rl.Limit(okHandler(&called))
		req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
		if i == 2 {
			assert.False(t, called)
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestRateLimit_RedisFailureAllowsRequest(t *testing.T) {
	rl := middleware.NewRateLimit(&fakeCache{incrErr: assert.AnError}, 5)

	var called bool
	handler := rl.Limit(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/clients/", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRateLimit_NoUserPassesThrough(t *testing.T) {
	rl := middleware.NewRateLimit(&fakeCache{}, 5)

	var called bool
	handler := rl.Limit(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
