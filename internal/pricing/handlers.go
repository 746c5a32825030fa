package pricing

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// Handler exposes the preview endpoint.
type Handler struct {
	Service Service
}

type previewRequest struct {
	ListPrice     decimal.Decimal   `json:"listPrice"`
	Discounts     []decimal.Decimal `json:"discounts"`
	IvaEnabled    bool              `json:"ivaEnabled"`
	IvaPercentage *decimal.Decimal  `json:"ivaPercentage,omitempty"`
}

// Preview handles POST /api/v1/pricing/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	result, err := h.Service.Preview(PreviewInput{
		ListPrice:     req.ListPrice,
		Discounts:     req.Discounts,
		IvaEnabled:    req.IvaEnabled,
		IvaPercentage: req.IvaPercentage,
	})
	if err != nil {
		if obs.PreviewTotal != nil {
			obs.PreviewTotal.WithLabelValues("error").Inc()
		}
		common.WriteError(w, err)
		return
	}
	if obs.PreviewTotal != nil {
		obs.PreviewTotal.WithLabelValues("ok").Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
