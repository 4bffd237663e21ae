package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

const defaultSessionMinutes = 50

// Sessions bundles the therapy session endpoints.
type Sessions struct {
	store store.Store
}

func NewSessions(s store.Store) *Sessions {
	return &Sessions{store: s}
}

// Create handles POST /sessions/. The client must belong to the caller's tenant.
func (h *Sessions) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		ClientID    uuid.UUID  `json:"client_id"`
		ScheduledAt *time.Time `json:"scheduled_at"`
		DurationMin int        `json:"duration_min"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ClientID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "client_id is required", nil)
		return
	}
	if req.ScheduledAt == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "scheduled_at is required", nil)
		return
	}
	if req.DurationMin == 0 {
		req.DurationMin = defaultSessionMinutes
	}
	if req.DurationMin < 0 || req.DurationMin > 24*60 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "duration_min must be between 1 and 1440", nil)
		return
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:          uuid.New(),
		ClientID:    req.ClientID,
		ScheduledAt: *req.ScheduledAt,
		DurationMin: req.DurationMin,
		Status:      models.SessionPlanned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateSession(r.Context(), session, tenantID); err != nil {
		storeError(w, err, "Client")
		return
	}
	response.Created(w, session)
}

// List handles GET /sessions/ with optional client_id and status filters.
func (h *Sessions) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	clientID, ok := queryUUID(w, r, "client_id")
	if !ok {
		return
	}
	page, limit := pageParams(r)

	sessions, total, err := h.store.ListSessions(r.Context(), store.SessionFilter{
		TenantID: tenantID,
		ClientID: clientID,
		Status:   r.URL.Query().Get("status"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		storeError(w, err, "Sessions")
		return
	}
	if sessions == nil {
		sessions = []*models.Session{}
	}
	response.Collection(w, sessions, collectionMeta(page, limit, total))
}

// Get handles GET /sessions/{sessionID}.
func (h *Sessions) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "sessionID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	session, err := h.store.GetSession(r.Context(), id, tenantID)
	if err != nil {
		storeError(w, err, "Session")
		return
	}
	response.JSON(w, session)
}

// Update handles PATCH /sessions/{sessionID}. Status changes must follow
// planned -> in_progress -> done.
func (h *Sessions) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "sessionID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		ScheduledAt *time.Time `json:"scheduled_at"`
		DurationMin *int       `json:"duration_min"`
		Status      *string    `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ScheduledAt == nil && req.DurationMin == nil && req.Status == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.DurationMin != nil && (*req.DurationMin <= 0 || *req.DurationMin > 24*60) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "duration_min must be between 1 and 1440", nil)
		return
	}
	if req.Status != nil && *req.Status != models.SessionPlanned &&
		*req.Status != models.SessionInProgress && *req.Status != models.SessionDone {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "status must be one of planned, in_progress, done", nil)
		return
	}

	session, err := h.store.UpdateSession(r.Context(), id, tenantID, store.SessionUpdate{
		ScheduledAt: req.ScheduledAt,
		DurationMin: req.DurationMin,
		Status:      req.Status,
	})
	if err != nil {
		storeError(w, err, "Session")
		return
	}
	response.JSON(w, session)
}

// Delete handles DELETE /sessions/{sessionID}.
func (h *Sessions) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "sessionID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteSession(r.Context(), id, tenantID); err != nil {
		storeError(w, err, "Session")
		return
	}
	response.NoContent(w)
}
