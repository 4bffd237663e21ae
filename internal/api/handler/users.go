package handler

import (
	"net/http"

	"github.com/stavrogyn/illumate-api/internal/api/middleware"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Users bundles the user management endpoints.
type Users struct {
	store store.Store
}

func NewUsers(s store.Store) *Users {
	return &Users{store: s}
}

// List handles GET /users/.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	users, total, err := h.store.ListUsers(r.Context(), store.ListFilter{
		TenantID: tenantID,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		storeError(w, err, "Users")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	response.Collection(w, users, collectionMeta(page, limit, total))
}

// Get handles GET /users/{userID}.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "userID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), id, tenantID)
	if err != nil {
		storeError(w, err, "User")
		return
	}
	response.JSON(w, user)
}

// Update handles PATCH /users/{userID}.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "userID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Role   *string `json:"role"`
		Locale *string `json:"locale"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == nil && req.Locale == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "role must be one of therapist, assistant, owner", nil)
		return
	}
	if req.Locale != nil && (*req.Locale == "" || len(*req.Locale) > 8) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "locale must be 1-8 characters", nil)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), id, tenantID, store.UserUpdate{
		Role:   req.Role,
		Locale: req.Locale,
	})
	if err != nil {
		storeError(w, err, "User")
		return
	}
	response.JSON(w, user)
}

// Delete handles DELETE /users/{userID}. Restricted to owners by the router;
// an owner cannot delete their own account.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "userID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	if callerID, ok := middleware.GetUserID(r); ok && callerID == id {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "cannot delete your own account", nil)
		return
	}

	if err := h.store.DeleteUser(r.Context(), id, tenantID); err != nil {
		storeError(w, err, "User")
		return
	}
	response.NoContent(w)
}
