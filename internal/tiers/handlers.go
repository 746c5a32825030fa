package tiers

import (
	"encoding/json"
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes tenant tier configuration endpoints.
type Handler struct {
	Service *Service
}

// Get handles GET /api/v1/pricing/tiers.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.Get(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}

// Update handles PUT /api/v1/pricing/tiers. The whole configuration is
// replaced; partial updates are not supported.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Configuration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	cfg, err := h.Service.Update(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}
