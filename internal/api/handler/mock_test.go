package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/internal/auth"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// mockStore delegates to per-method function fields. Calls to methods without
// a configured field panic via the embedded interface.
type mockStore struct {
	store.Store

	getUserFn func(ctx context.Context, id, tenantID uuid.UUID) (*models.User, error)

	createClientFn func(ctx context.Context, client *models.Client) error
	getClientFn    func(ctx context.Context, id, tenantID uuid.UUID) (*models.Client, error)
	listClientsFn  func(ctx context.Context, filter store.ClientFilter) ([]*models.Client, int, error)
	updateClientFn func(ctx context.Context, id, tenantID uuid.UUID, update store.ClientUpdate) (*models.Client, error)
	deleteClientFn func(ctx context.Context, id, tenantID uuid.UUID) error

	createSessionFn func(ctx context.Context, session *models.Session, tenantID uuid.UUID) error
	updateSessionFn func(ctx context.Context, id, tenantID uuid.UUID, update store.SessionUpdate) (*models.Session, error)

	createNoteFn func(ctx context.Context, note *models.Note, tenantID uuid.UUID) error
	getNoteFn    func(ctx context.Context, id, tenantID uuid.UUID) (*models.Note, error)
	updateNoteFn func(ctx context.Context, id, tenantID uuid.UUID, update store.NoteUpdate) (*models.Note, error)
	deleteNoteFn func(ctx context.Context, id, tenantID uuid.UUID) error
}

func (m *mockStore) GetUser(ctx context.Context, id, tenantID uuid.UUID) (*models.User, error) {
	return m.getUserFn(ctx, id, tenantID)
}

func (m *mockStore) CreateClient(ctx context.Context, client *models.Client) error {
	return m.createClientFn(ctx, client)
}

func (m *mockStore) GetClient(ctx context.Context, id, tenantID uuid.UUID) (*models.Client, error) {
	return m.getClientFn(ctx, id, tenantID)
}

func (m *mockStore) ListClients(ctx context.Context, filter store.ClientFilter) ([]*models.Client, int, error) {
	return m.listClientsFn(ctx, filter)
}

func (m *mockStore) UpdateClient(ctx context.Context, id, tenantID uuid.UUID, update store.ClientUpdate) (*models.Client, error) {
	return m.updateClientFn(ctx, id, tenantID, update)
}

func (m *mockStore) DeleteClient(ctx context.Context, id, tenantID uuid.UUID) error {
	return m.deleteClientFn(ctx, id, tenantID)
}

func (m *mockStore) CreateSession(ctx context.Context, session *models.Session, tenantID uuid.UUID) error {
	return m.createSessionFn(ctx, session, tenantID)
}

func (m *mockStore) UpdateSession(ctx context.Context, id, tenantID uuid.UUID, update store.SessionUpdate) (*models.Session, error) {
	return m.updateSessionFn(ctx, id, tenantID, update)
}

func (m *mockStore) CreateNote(ctx context.Context, note *models.Note, tenantID uuid.UUID) error {
	return m.createNoteFn(ctx, note, tenantID)
}

func (m *mockStore) GetNote(ctx context.Context, id, tenantID uuid.UUID) (*models.Note, error) {
	return m.getNoteFn(ctx, id, tenantID)
}

func (m *mockStore) UpdateNote(ctx context.Context, id, tenantID uuid.UUID, update store.NoteUpdate) (*models.Note, error) {
	return m.updateNoteFn(ctx, id, tenantID, update)
}

func (m *mockStore) DeleteNote(ctx context.Context, id, tenantID uuid.UUID) error {
	return m.deleteNoteFn(ctx, id, tenantID)
}

// mockAuthService delegates to per-method function fields.
type mockAuthService struct {
	registerFn func(ctx context.Context, params auth.RegisterParams) (*models.User, error)
	loginFn    func(ctx context.Context, email, password string) (*models.User, string, time.Time, error)
	verifyFn   func(ctx context.Context, token string) (*models.User, error)
	resendFn   func(ctx context.Context, email string) error
}

func (m *mockAuthService) Register(ctx context.Context, params auth.RegisterParams) (*models.User, error) {
	return m.registerFn(ctx, params)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	return m.verifyFn(ctx, token)
}

func (m *mockAuthService) ResendVerification(ctx context.Context, email string) error {
	return m.resendFn(ctx, email)
}

// mockCache records denylisted token IDs.
type mockCache struct {
	denied map[string]time.Duration
}

func (m *mockCache) Ping(context.Context) error { return nil }

func (m *mockCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

func (m *mockCache) DenyToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.denied == nil {
		m.denied = map[string]time.Duration{}
	}
	m.denied[jti] = ttl
	return nil
}

func (m *mockCache) IsTokenDenied(_ context.Context, jti string) (bool, error) {
	_, ok := m.denied[jti]
	return ok, nil
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asCaller attaches the identity the auth middleware would have set.
func asCaller(r *http.Request, userID, tenantID uuid.UUID, role string) *http.Request {
	ctx := r.Context()
	ctx = middleware.SetUserID(ctx, userID)
	ctx = middleware.SetTenantID(ctx, tenantID)
	ctx = middleware.SetRole(ctx, role)
	return r.WithContext(ctx)
}

// withURLParam attaches a chi route parameter.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}
