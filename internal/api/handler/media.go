package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Media bundles the media attachment endpoints.
type Media struct {
	store store.Store
}

func NewMedia(s store.Store) *Media {
	return &Media{store: s}
}

// Create handles POST /media/.
func (h *Media) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		SessionID     uuid.UUID       `json:"session_id"`
		Type          string          `json:"type"`
		URL           string          `json:"url"`
		Transcription json.RawMessage `json:"transcription"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.SessionID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "session_id is required", nil)
		return
	}
	if !models.ValidMediaType(req.Type) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "type must be one of audio, video, image", nil)
		return
	}
	if !validResourceURL(req.URL) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "url must be a valid http(s) URL", nil)
		return
	}

	now := time.Now().UTC()
	media := &models.Media{
		ID:            uuid.New(),
		SessionID:     req.SessionID,
		Type:          req.Type,
		URL:           req.URL,
		Transcription: req.Transcription,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.store.CreateMedia(r.Context(), media, tenantID); err != nil {
		storeError(w, err, "Session")
		return
	}
	response.Created(w, media)
}

// List handles GET /media/ with an optional session_id filter.
func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	sessionID, ok := queryUUID(w, r, "session_id")
	if !ok {
		return
	}
	page, limit := pageParams(r)

	items, total, err := h.store.ListMedia(r.Context(), store.MediaFilter{
		TenantID:  tenantID,
		SessionID: sessionID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		storeError(w, err, "Media")
		return
	}
	if items == nil {
		items = []*models.Media{}
	}
	response.Collection(w, items, collectionMeta(page, limit, total))
}

// Get handles GET /media/{mediaID}.
func (h *Media) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "mediaID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	media, err := h.store.GetMedia(r.Context(), id, tenantID)
	if err != nil {
		storeError(w, err, "Media")
		return
	}
	response.JSON(w, media)
}

// Update handles PATCH /media/{mediaID}.
func (h *Media) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "mediaID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Type          *string          `json:"type"`
		URL           *string          `json:"url"`
		Transcription *json.RawMessage `json:"transcription"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == nil && req.URL == nil && req.Transcription == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.Type != nil && !models.ValidMediaType(*req.Type) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "type must be one of audio, video, image", nil)
		return
	}
	if req.URL != nil && !validResourceURL(*req.URL) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "url must be a valid http(s) URL", nil)
		return
	}

	update := store.MediaUpdate{Type: req.Type, URL: req.URL}
	if req.Transcription != nil {
		raw := []byte(*req.Transcription)
		update.Transcription = &raw
	}

	media, err := h.store.UpdateMedia(r.Context(), id, tenantID, update)
	if err != nil {
		storeError(w, err, "Media")
		return
	}
	response.JSON(w, media)
}

// Delete handles DELETE /media/{mediaID}.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "mediaID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteMedia(r.Context(), id, tenantID); err != nil {
		storeError(w, err, "Media")
		return
	}
	response.NoContent(w)
}

func validResourceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
