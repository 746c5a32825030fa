package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, dec(v))
	}
	return out
}

func assertEqual(t *testing.T, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestNetCostEmptyDiscounts(t *testing.T) {
	assertEqual(t, pricing.NetCost(dec("123.456"), nil), dec("123.46"))
	assertEqual(t, pricing.NetCost(dec("100"), []decimal.Decimal{}), dec("100"))
}

func TestNetCostCascades(t *testing.T) {
	// 100 * 0.9 * 0.8 = 72, not the additive 70.
	assertEqual(t, pricing.NetCost(dec("100"), decs("10", "20")), dec("72"))
}

func TestNetCostOrderInsensitiveForProduct(t *testing.T) {
	// Multiplication commutes, so swapping equal-length cascades of the
	// same factors yields the same rounded result.
	a := pricing.NetCost(dec("500"), decs("10", "5"))
	b := pricing.NetCost(dec("500"), decs("5", "10"))
	assertEqual(t, a, dec("427.50"))
	assertEqual(t, b, dec("427.50"))
}

func TestNetCostRoundsOnceAtEnd(t *testing.T) {
	// 100 * (1-0.66665) = 33.335; rounding that step to 33.34 before the
	// 10% discount would give 30.01. Full precision: 33.335*0.9 = 30.0015,
	// which rounds to 30.00.
	got := pricing.NetCost(dec("100"), decs("66.665", "10"))
	assertEqual(t, got, dec("30.00"))
}

func TestSalePriceFromMargin(t *testing.T) {
	sale, err := pricing.SalePriceFromMargin(dec("72"), dec("28"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, sale, dec("100"))

	margin, err := pricing.MarginFromSalePrice(dec("72"), dec("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, margin, dec("28"))
}

func TestSalePriceFromMarginRejectsMarginAtOrAbove100(t *testing.T) {
	for _, m := range []string{"100", "150"} {
		if _, err := pricing.SalePriceFromMargin(dec("50"), dec(m)); !errors.Is(err, pricing.ErrInvalidMargin) {
			t.Fatalf("margin %s: expected ErrInvalidMargin, got %v", m, err)
		}
	}
}

func TestSalePriceFromMarginAllowsNegativeMargin(t *testing.T) {
	sale, err := pricing.SalePriceFromMargin(dec("100"), dec("-25"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 100 / 1.25 = 80: below cost, as negative margins imply.
	assertEqual(t, sale, dec("80"))
}

func TestMarginFromSalePriceRejectsZero(t *testing.T) {
	if _, err := pricing.MarginFromSalePrice(dec("50"), decimal.Zero); !errors.Is(err, pricing.ErrInvalidSalePrice) {
		t.Fatalf("expected ErrInvalidSalePrice, got %v", err)
	}
}

func TestIvaRoundTrip(t *testing.T) {
	withIva := pricing.ApplyIva(dec("100"), dec("16"))
	assertEqual(t, withIva, dec("116"))
	assertEqual(t, pricing.RemoveIva(withIva, dec("16")), dec("100"))
	// Exactness is not guaranteed in general: each step rounds.
	approx := pricing.RemoveIva(pricing.ApplyIva(dec("0.03"), dec("16")), dec("16"))
	diff := approx.Sub(dec("0.03")).Abs()
	if diff.GreaterThan(dec("0.01")) {
		t.Fatalf("round trip drifted by %s", diff)
	}
}

func TestEndToEndScenario(t *testing.T) {
	net := pricing.NetCost(dec("500"), decs("10", "5"))
	assertEqual(t, net, dec("427.50"))

	sale, err := pricing.SalePriceFromMargin(net, dec("20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, sale, dec("534.38"))
	assertEqual(t, pricing.ApplyIva(sale, dec("16")), dec("619.88"))
}
