package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Notes bundles the note endpoints. The author is always the caller.
type Notes struct {
	store store.Store
}

func NewNotes(s store.Store) *Notes {
	return &Notes{store: s}
}

// Create handles POST /notes/.
func (h *Notes) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	authorID, ok := middleware.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
		return
	}

	var req struct {
		SessionID *uuid.UUID `json:"session_id"`
		BodyMD    string     `json:"body_md"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BodyMD == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "body_md is required", nil)
		return
	}

	now := time.Now().UTC()
	note := &models.Note{
		ID:        uuid.New(),
		SessionID: req.SessionID,
		AuthorID:  authorID,
		BodyMD:    req.BodyMD,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateNote(r.Context(), note, tenantID); err != nil {
		storeError(w, err, "Session")
		return
	}
	response.Created(w, note)
}

// List handles GET /notes/ with optional session_id and author_id filters.
func (h *Notes) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	sessionID, ok := queryUUID(w, r, "session_id")
	if !ok {
		return
	}
	authorID, ok := queryUUID(w, r, "author_id")
	if !ok {
		return
	}
	page, limit := pageParams(r)

	notes, total, err := h.store.ListNotes(r.Context(), store.NoteFilter{
		TenantID:  tenantID,
		SessionID: sessionID,
		AuthorID:  authorID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		storeError(w, err, "Notes")
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	response.Collection(w, notes, collectionMeta(page, limit, total))
}

// Get handles GET /notes/{noteID}.
func (h *Notes) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "noteID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	note, err := h.store.GetNote(r.Context(), id, tenantID)
	if err != nil {
		storeError(w, err, "Note")
		return
	}
	response.JSON(w, note)
}

// Update handles PATCH /notes/{noteID}. Only the author or an owner may edit.
func (h *Notes) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "noteID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	if !h.canMutate(w, r, id, tenantID) {
		return
	}

	var req struct {
		SessionID *uuid.UUID `json:"session_id"`
		BodyMD    *string    `json:"body_md"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == nil && req.BodyMD == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.BodyMD != nil && *req.BodyMD == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "body_md must not be empty", nil)
		return
	}

	note, err := h.store.UpdateNote(r.Context(), id, tenantID, store.NoteUpdate{
		SessionID: req.SessionID,
		BodyMD:    req.BodyMD,
	})
	if err != nil {
		storeError(w, err, "Note")
		return
	}
	response.JSON(w, note)
}

// Delete handles DELETE /notes/{noteID}. Only the author or an owner may delete.
func (h *Notes) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "noteID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	if !h.canMutate(w, r, id, tenantID) {
		return
	}

	if err := h.store.DeleteNote(r.Context(), id, tenantID); err != nil {
		storeError(w, err, "Note")
		return
	}
	response.NoContent(w)
}

// canMutate checks that the caller authored the note or holds the owner role.
// Writes the error response and returns false when the check fails.
func (h *Notes) canMutate(w http.ResponseWriter, r *http.Request, noteID, tenantID uuid.UUID) bool {
	note, err := h.store.GetNote(r.Context(), noteID, tenantID)
	if err != nil {
		storeError(w, err, "Note")
		return false
	}

	callerID, _ := middleware.GetUserID(r)
	role, _ := middleware.GetRole(r)
	if note.AuthorID != callerID && role != models.RoleOwner {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Only the author or an owner can modify this note", nil)
		return false
	}
	return true
}
