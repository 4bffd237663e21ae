package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/api/response"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
)

// Insights bundles the AI insight endpoints. Insights are produced by an
// external pipeline and stored here as opaque JSON with an optional embedding.
type Insights struct {
	store store.Store
}

func NewInsights(s store.Store) *Insights {
	return &Insights{store: s}
}

// Create handles POST /ai-insights/.
func (h *Insights) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		SessionID uuid.UUID       `json:"session_id"`
		Kind      string          `json:"kind"`
		Content   json.RawMessage `json:"content"`
		Embedding []float32       `json:"embedding"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.SessionID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "session_id is required", nil)
		return
	}
	if !models.ValidInsightKind(req.Kind) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "kind must be one of summary, trigger, todo", nil)
		return
	}
	if len(req.Content) == 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content is required", nil)
		return
	}

	now := time.Now().UTC()
	insight := &models.Insight{
		ID:        uuid.New(),
		SessionID: req.SessionID,
		Kind:      req.Kind,
		Content:   req.Content,
		Embedding: req.Embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateInsight(r.Context(), insight, tenantID); err != nil {
		storeError(w, err, "Session")
		return
	}
	response.Created(w, insight)
}

// List handles GET /ai-insights/ with optional session_id and kind filters.
func (h *Insights) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	sessionID, ok := queryUUID(w, r, "session_id")
	if !ok {
		return
	}
	page, limit := pageParams(r)

	insights, total, err := h.store.ListInsights(r.Context(), store.InsightFilter{
		TenantID:  tenantID,
		SessionID: sessionID,
		Kind:      r.URL.Query().Get("kind"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		storeError(w, err, "Insights")
		return
	}
	if insights == nil {
		insights = []*models.Insight{}
	}
	response.Collection(w, insights, collectionMeta(page, limit, total))
}

// Get handles GET /ai-insights/{insightID}.
func (h *Insights) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "insightID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	insight, err := h.store.GetInsight(r.Context(), id, tenantID)
	if err != nil {
		storeError(w, err, "Insight")
		return
	}
	response.JSON(w, insight)
}

// Update handles PATCH /ai-insights/{insightID}.
func (h *Insights) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "insightID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Kind      *string          `json:"kind"`
		Content   *json.RawMessage `json:"content"`
		Embedding *[]float32       `json:"embedding"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Kind == nil && req.Content == nil && req.Embedding == nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "nothing to update", nil)
		return
	}
	if req.Kind != nil && !models.ValidInsightKind(*req.Kind) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "kind must be one of summary, trigger, todo", nil)
		return
	}
	if req.Content != nil && len(*req.Content) == 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content must not be empty", nil)
		return
	}

	update := store.InsightUpdate{Kind: req.Kind, Embedding: req.Embedding}
	if req.Content != nil {
		raw := []byte(*req.Content)
		update.Content = &raw
	}

	insight, err := h.store.UpdateInsight(r.Context(), id, tenantID, update)
	if err != nil {
		storeError(w, err, "Insight")
		return
	}
	response.JSON(w, insight)
}

// Delete handles DELETE /ai-insights/{insightID}.
func (h *Insights) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "insightID")
	if !ok {
		return
	}
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteInsight(r.Context(), id, tenantID); err != nil {
		storeError(w, err, "Insight")
		return
	}
	response.NoContent(w)
}
