package products

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes product and product pricing endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

// Create handles POST /api/v1/products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "invalid product", validationDetails(err))
			return
		}
	}
	product, err := h.Service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": product})
}

// List handles GET /api/v1/products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	items, total, err := h.Service.List(r.Context(), page, perPage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// GetPricing handles GET /api/v1/products/{id}/pricing.
func (h *Handler) GetPricing(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetPricing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

type setPricingRequest struct {
	ListPrice       *decimal.Decimal `json:"listPrice"`
	IvaEnabled      bool             `json:"ivaEnabled"`
	Discounts       []Discount       `json:"discounts"`
	MarginOverrides []MarginOverride `json:"marginOverrides"`
}

// SetPricing handles PUT /api/v1/products/{id}/pricing.
func (h *Handler) SetPricing(w http.ResponseWriter, r *http.Request) {
	var req setPricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	view, err := h.Service.SetPricing(r.Context(), chi.URLParam(r, "id"), SetPricingInput{
		ListPrice:       req.ListPrice,
		IvaEnabled:      req.IvaEnabled,
		Discounts:       req.Discounts,
		MarginOverrides: req.MarginOverrides,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func validationDetails(err error) any {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return nil
	}
	fields := make([]map[string]string, 0, len(invalid))
	for _, f := range invalid {
		fields = append(fields, map[string]string{"field": f.Field(), "rule": f.Tag()})
	}
	return map[string]any{"fields": fields}
}
