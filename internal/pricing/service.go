package pricing

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// SampleMargins is the fixed margin set used by preview calculations. Every
// value is below 100, so previews never trip the engine's margin guard.
var SampleMargins = []int64{10, 15, 20, 25, 30, 35, 40, 45, 50}

// PreviewInput carries the transient inputs of a preview calculation.
type PreviewInput struct {
	ListPrice     decimal.Decimal
	Discounts     []decimal.Decimal
	IvaEnabled    bool
	IvaPercentage *decimal.Decimal
}

// MarginRow is one computed sale price at a sample margin.
type MarginRow struct {
	MarginPercentage decimal.Decimal `json:"marginPercentage"`
	SalePrice        decimal.Decimal `json:"salePrice"`
	PriceWithIva     decimal.Decimal `json:"priceWithIva"`
}

// PreviewResult is the transient outcome of a preview calculation.
type PreviewResult struct {
	NetCost decimal.Decimal `json:"netCost"`
	Rows    []MarginRow     `json:"rows"`
}

// Service computes transient pricing previews. It holds no state beyond the
// sample margin set and is safe for concurrent use.
type Service struct {
	Margins []int64
}

// Preview validates the inputs and computes net cost plus one row per sample
// margin. Nothing is persisted.
func (s Service) Preview(in PreviewInput) (PreviewResult, error) {
	if in.ListPrice.IsNegative() {
		return PreviewResult{}, common.ValidationError("listPrice", "list price must not be negative")
	}
	for i, d := range in.Discounts {
		if err := validateDiscountPercentage(d); err != nil {
			return PreviewResult{}, validationErrorAt("discounts", i, err.Error())
		}
	}
	ivaPct := DefaultIvaPercentage
	if in.IvaPercentage != nil {
		if in.IvaPercentage.IsNegative() {
			return PreviewResult{}, common.ValidationError("ivaPercentage", "iva percentage must not be negative")
		}
		ivaPct = *in.IvaPercentage
	}

	net := NetCost(in.ListPrice, in.Discounts)
	margins := s.Margins
	if len(margins) == 0 {
		margins = SampleMargins
	}
	rows := make([]MarginRow, 0, len(margins))
	for _, m := range margins {
		margin := decimal.NewFromInt(m)
		sale, err := SalePriceFromMargin(net, margin)
		if err != nil {
			return PreviewResult{}, common.NewAppError(common.CodeValidation, err.Error(), http.StatusUnprocessableEntity, err)
		}
		withIva := sale
		if in.IvaEnabled {
			withIva = ApplyIva(sale, ivaPct)
		}
		rows = append(rows, MarginRow{MarginPercentage: margin, SalePrice: sale, PriceWithIva: withIva})
	}
	return PreviewResult{NetCost: net, Rows: rows}, nil
}

func validateDiscountPercentage(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return errors.New("discount percentage must be in [0, 100)")
	}
	return nil
}

func validationErrorAt(field string, index int, message string) *common.AppError {
	return &common.AppError{
		Code:       common.CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"field": field, "index": index},
	}
}
