package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Clients bundles the client endpoints.
type Clients struct {
	store store.Store
}

func NewClients(s store.Store) *Clients {
	return &Clients{store: s}
}

// Create handles POST /clients/.
func (h *Clients) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName string     `json:"full_name"`
		Birthday *time.Time `json:"birthday"`
		Tags     []string   `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" || len(req.FullName) > 120 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "full_name is required and must be at most 120 characters", nil)
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	now := time.Now().UTC()
	client := &models.Client{
		ID:        uuid.New(),
		TenantID:  tenantID,
		FullName:  req.FullName,
		Birthday:  req.Birthday,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateClient(r.Context(), client); err != nil {
		storeError(w, err, "Client")
		return
	}
	response.Created(w, client)
}

// List handles GET /clients/ with an optional tag filter.
func (h *Clients) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	clients, total, err := h.store.ListClients(r.Context(), store.ClientFilter{
		TenantID: tenantID,
		Tag:      r.URL.Query().Get("tag"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		storeError(w, err, "Clients")
		return
	}
	if clients == nil {
		clients = []*models.Client{}
	}
	response.Collection(w, clients, collectionMeta(page, limit, total))
}

// Get handles GET /clients/{clientID}.
func (h *Clients) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "clientID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	client, err := h.store.GetClient(r.Context(), id, tenantID)
	if err != nil {
		storeError(w, err, "Client")
		return
	}
	response.JSON(w, client)
}

// Update handles PATCH /clients/{clientID}.
func (h *Clients) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "clientID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName *string    `json:"full_name"`
		Birthday *time.Time `json:"birthday"`
		Tags     *[]string  `json:"tags"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FullName == nil && req.Birthday == nil && req.Tags == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		if trimmed == "" || len(trimmed) > 120 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "full_name must be 1-120 characters", nil)
			return
		}
		req.FullName = &trimmed
	}

	client, err := h.store.UpdateClient(r.Context(), id, tenantID, store.ClientUpdate{
		FullName: req.FullName,
		Birthday: req.Birthday,
		Tags:     req.Tags,
	})
	if err != nil {
		storeError(w, err, "Client")
		return
	}
	response.JSON(w, client)
}

// Delete handles DELETE /clients/{clientID}. Sessions cascade.
func (h *Clients) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "clientID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteClient(r.Context(), id, tenantID); err != nil {
		storeError(w, err, "Client")
		return
	}
	response.NoContent(w)
}
