package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every monetary and percentage
// result carries.
const Scale = 2

// Round2 rounds to two fractional digits, half away from zero. All public
// pricing calculations apply this exactly once, on their final result.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent converts a percentage value to its fractional form (16 -> 0.16).
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(decimal.NewFromInt(100))
}

// FromString parses a decimal amount, rejecting empty input with a clearer
// error than the underlying library.
func FromString(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return d, nil
}

// MustFromString parses a decimal amount and panics on failure. Intended for
// constants and tests.
func MustFromString(s string) decimal.Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
