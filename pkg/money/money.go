// Package money validates the decimal amounts stored in numeric(10,2)
// columns. Inputs are checked as given, so a sub-cent value is rejected
// instead of rounding down to zero after it passed validation.
package money

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
)

const scale = 2

// Max is the largest value a numeric(10,2) column holds.
var Max = decimal.RequireFromString("99999999.99")

// Positive returns d at cent scale, or a validation error naming field when d
// is not greater than zero.
func Positive(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if err := checkScale(field, d); err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, pkgerrors.Field(field, field+" must be greater than zero")
	}
	return d.Round(scale), nil
}

// NonNegative is Positive but admits zero.
func NonNegative(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if err := checkScale(field, d); err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, pkgerrors.Field(field, field+" must not be negative")
	}
	return d.Round(scale), nil
}

func checkScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(scale)) {
		return pkgerrors.Field(field, field+" must have at most 2 decimal places")
	}
	if d.GreaterThan(Max) {
		return pkgerrors.Field(field, field+" must not exceed "+Max.StringFixed(scale))
	}
	return nil
}
