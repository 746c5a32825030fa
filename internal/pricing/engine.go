package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/money"
)

// Calculation failures surfaced by the engine. Services translate these into
// validation errors for callers.
var (
	// ErrInvalidMargin indicates a margin percentage of 100 or more, for
	// which no sale price exists.
	ErrInvalidMargin = errors.New("pricing: margin must be below 100")
	// ErrInvalidSalePrice indicates a zero sale price, from which no margin
	// can be derived.
	ErrInvalidSalePrice = errors.New("pricing: sale price must not be zero")
)

// DefaultIvaPercentage is applied when a caller does not supply a VAT rate.
var DefaultIvaPercentage = decimal.NewFromInt(16)

var one = decimal.NewFromInt(1)

// NetCost applies the discount percentages to the list price in sequence
// order. Discounts cascade: each one applies to the result of the previous,
// so reordering differing discounts changes the outcome. Intermediate steps
// are kept at full precision; only the final result is rounded.
func NetCost(listPrice decimal.Decimal, discounts []decimal.Decimal) decimal.Decimal {
	net := listPrice
	for _, d := range discounts {
		net = net.Mul(one.Sub(money.Percent(d)))
	}
	return money.Round2(net)
}

// SalePriceFromMargin derives the sale price that yields the given margin
// over the net cost: net / (1 - margin/100). Margins of 100 or more are
// rejected; negative margins (selling below cost) are allowed.
func SalePriceFromMargin(netCost, marginPercentage decimal.Decimal) (decimal.Decimal, error) {
	if marginPercentage.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return decimal.Zero, ErrInvalidMargin
	}
	divisor := one.Sub(money.Percent(marginPercentage))
	return money.Round2(netCost.Div(divisor)), nil
}

// MarginFromSalePrice back-derives the margin percentage implied by a sale
// price: (sale - net) / sale * 100.
func MarginFromSalePrice(netCost, salePrice decimal.Decimal) (decimal.Decimal, error) {
	if salePrice.IsZero() {
		return decimal.Zero, ErrInvalidSalePrice
	}
	margin := salePrice.Sub(netCost).Div(salePrice).Mul(decimal.NewFromInt(100))
	return money.Round2(margin), nil
}

// ApplyIva adds VAT to a sale price.
func ApplyIva(salePrice, ivaPercentage decimal.Decimal) decimal.Decimal {
	return money.Round2(salePrice.Mul(one.Add(money.Percent(ivaPercentage))))
}

// RemoveIva strips VAT from a tax-inclusive price. ApplyIva followed by
// RemoveIva recovers the input only up to the rounding each step performs.
func RemoveIva(priceWithIva, ivaPercentage decimal.Decimal) decimal.Decimal {
	return money.Round2(priceWithIva.Div(one.Add(money.Percent(ivaPercentage))))
}
