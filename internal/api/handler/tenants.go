package handler

import (
	"net/http"

	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Tenants bundles the tenant endpoints. A caller can only see and modify the
// tenant it belongs to.
type Tenants struct {
	store store.Store
}

func NewTenants(s store.Store) *Tenants {
	return &Tenants{store: s}
}

// Get handles GET /tenants/{tenantID}.
func (h *Tenants) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "tenantID")
	if !ok {
		return
	}
	callerTenant, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	// Cross-tenant lookups 404 rather than 403 so tenant IDs don't leak.
	if id != callerTenant {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Tenant not found", nil)
		return
	}

	tenant, err := h.store.GetTenant(r.Context(), id)
	if err != nil {
		storeError(w, err, "Tenant")
		return
	}
	response.JSON(w, tenant)
}

// Update handles PATCH /tenants/{tenantID}. Restricted to owners by the router.
func (h *Tenants) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "tenantID")
	if !ok {
		return
	}
	callerTenant, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	if id != callerTenant {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Tenant not found", nil)
		return
	}

	var req struct {
		Name *string `json:"name"`
		Plan *string `json:"plan"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Plan == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.Name != nil && (*req.Name == "" || len(*req.Name) > 120) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name must be 1-120 characters", nil)
		return
	}
	if req.Plan != nil && !models.ValidPlan(*req.Plan) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "plan must be one of free, pro, org", nil)
		return
	}

	tenant, err := h.store.UpdateTenant(r.Context(), id, store.TenantUpdate{
		Name: req.Name,
		Plan: req.Plan,
	})
	if err != nil {
		storeError(w, err, "Tenant")
		return
	}
	response.JSON(w, tenant)
}
