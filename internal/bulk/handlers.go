package bulk

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/queue"
)

// Handler exposes bulk update endpoints. Jobs and Enqueuer are optional; when
// unset the async routes report the feature as unavailable.
type Handler struct {
	Processor *Processor
	Jobs      *JobStore
	Enqueuer  queue.Enqueuer
}

// Update handles POST /api/v1/pricing/bulk-update. It runs the batch inline
// and returns the per-product report.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var spec Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	report, err := h.Processor.Run(r.Context(), spec)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}

// UpdateAsync handles POST /api/v1/pricing/bulk-update/async. The spec is
// validated up front so a job is only created for specs the worker can run.
func (h *Handler) UpdateAsync(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "async bulk updates are not enabled", nil)
		return
	}
	var spec Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := validateSpec(spec); err != nil {
		common.WriteError(w, err)
		return
	}
	job, err := EnqueueJob(r.Context(), h.Jobs, h.Enqueuer, spec)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{"data": job})
}

// GetJob handles GET /api/v1/pricing/bulk-update/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "async bulk updates are not enabled", nil)
		return
	}
	job, err := h.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": job})
}
