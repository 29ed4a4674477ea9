// internal/pkg/money/money.go
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in major units tied to an ISO currency
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
	Scale    int32
}

// FromMinor converts an amount in minor units into Money. The number of
// minor digits follows the currency: 2 for USD, 0 for JPY, 3 for KWD.
func FromMinor(amount int64, code string) (Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency code %q: %w", code, err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	return Money{
		Amount:   decimal.New(amount, -int32(scale)),
		Currency: unit,
		Scale:    int32(scale),
	}, nil
}

// String renders "<amount> <CODE>", e.g. "76.00 USD"
func (m Money) String() string {
	return m.Amount.StringFixed(m.Scale) + " " + m.Currency.String()
}

// Format renders a minor-unit amount for display.
// Unknown currency codes still render the amount.
func Format(amount int64, code string) string {
	m, err := FromMinor(amount, code)
	if err != nil {
		return decimal.New(amount, -2).StringFixed(2)
	}
	return m.String()
}
