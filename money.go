package kourasync

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// fraction returns the number of minor-unit digits of a currency.
// Unknown currencies default to 2.
func fraction(currency string) int32 {
	if cur := money.GetCurrency(currency); cur != nil {
		return int32(cur.Fraction)
	}
	return 2
}

// ToMinor converts a major-unit amount into an integer number of minor units of currency.
//
// It fails if the amount is not a whole number of minor units.
func ToMinor(amount decimal.Decimal, currency string) (int64, error) {
	minor := amount.Shift(fraction(currency))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, fraction(currency))
	}
	return minor.IntPart(), nil
}

// FromMinor converts an integer number of minor units of currency into a major-unit amount.
func FromMinor(minor int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-fraction(currency))
}

// FormatMinor formats minor units of currency for display, e.g. "$100.00".
func FormatMinor(minor int64, currency string) string {
	return money.New(minor, currency).Display()
}
